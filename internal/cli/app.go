// Package cli implements the stockmate client subcommands on top of the store.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/erazemk/stockmate/internal/model"
)

// Credentials is the user side of the store used by the CLI.
type Credentials interface {
	AddUser(ctx context.Context, username, password string) error
	ValidateCredentials(ctx context.Context, username, password string) (bool, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

// Inventory is the item side of the store used by the CLI.
type Inventory interface {
	AddItem(ctx context.Context, name, description string, quantity int) (int64, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	GetAllItems(ctx context.Context) ([]model.Item, error)
	UpdateItem(ctx context.Context, item model.Item) (bool, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
	IncrementQuantity(ctx context.Context, id int64) (bool, error)
	DecrementQuantity(ctx context.Context, id int64) (bool, error)
}

// ErrLoginFailed is returned by the login command for rejected credentials.
var ErrLoginFailed = errors.New("invalid username or password")

// App runs client subcommands.
type App struct {
	Credentials Credentials
	Inventory   Inventory
	Confirmer   Confirmer

	In  *bufio.Reader
	Out io.Writer
	Err io.Writer
}

// New returns an App reading from in and writing to out and errOut. Deletes
// are confirmed on the same streams.
func New(creds Credentials, inv Inventory, in io.Reader, out, errOut io.Writer) *App {
	reader := bufio.NewReader(in)
	return &App{
		Credentials: creds,
		Inventory:   inv,
		Confirmer:   PromptConfirmer{In: reader, Out: out},
		In:          reader,
		Out:         out,
		Err:         errOut,
	}
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"register", "create a user account", (*App).register},
	{"login", "check a username and password", (*App).login},
	{"users", "list usernames", (*App).users},
	{"add", "add an item", (*App).add},
	{"list", "list all items", (*App).list},
	{"update", "change an item's name and quantity", (*App).update},
	{"delete", "delete an item after confirmation", (*App).remove},
	{"inc", "increase an item's quantity by one", (*App).inc},
	{"dec", "decrease an item's quantity by one, not below zero", (*App).dec},
}

// Commands writes the subcommand summary to w.
func Commands(w io.Writer) {
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

// Has reports whether name is a client subcommand.
func Has(name string) bool {
	for _, c := range commands {
		if c.name == name {
			return true
		}
	}
	return false
}

// Run executes the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	return fmt.Errorf("unknown command: %s", args[0])
}

// failure is a user-facing message wrapping the store error behind it.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

// explain turns a store error into something the user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrUsernameTaken):
		return &failure{"that username is already taken, choose another", err}
	case errors.Is(err, model.ErrInvalidInput):
		return &failure{err.Error(), err}
	case errors.Is(err, model.ErrStorageUnavailable):
		return &failure{"storage is unavailable, try again later", err}
	default:
		return err
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

func (a *App) success(format string, args ...any) {
	green.Fprintf(a.Out, format+"\n", args...)
}

func (a *App) notice(format string, args ...any) {
	yellow.Fprintf(a.Out, format+"\n", args...)
}
