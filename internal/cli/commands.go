package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/erazemk/stockmate/internal/model"
)

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

// parseArgs parses flags anywhere in args and returns the positional
// arguments in order. A bare "--" ends flag parsing.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	var username string
	fs.StringVar(&username, "user", "", "username")
	fs.StringVar(&username, "u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if username == "" {
		var err error
		if username, err = readLine(a.In, "Username: ", a.Out); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}

	password, err := readSecret(a.In, "Password: ", a.Out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	repeat, err := readSecret(a.In, "Repeat password: ", a.Out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if password != repeat {
		return errors.New("passwords do not match")
	}

	if err := a.Credentials.AddUser(ctx, username, password); err != nil {
		return explain(err)
	}

	a.success("Registered %s", username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	var username string
	fs.StringVar(&username, "user", "", "username")
	fs.StringVar(&username, "u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if username == "" {
		var err error
		if username, err = readLine(a.In, "Username: ", a.Out); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}

	password, err := readSecret(a.In, "Password: ", a.Out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	ok, err := a.Credentials.ValidateCredentials(ctx, username, password)
	if err != nil {
		return explain(err)
	}
	if !ok {
		return ErrLoginFailed
	}

	a.success("Login successful")
	return nil
}

func (a *App) users(ctx context.Context, args []string) error {
	if err := a.flagSet("users").Parse(args); err != nil {
		return err
	}

	names, err := a.Credentials.ListUsernames(ctx)
	if err != nil {
		return explain(err)
	}
	if len(names) == 0 {
		a.notice("No users registered")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(a.Out, name)
	}
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	var name, description string
	var quantity int
	fs.StringVar(&name, "name", "", "item name")
	fs.StringVar(&name, "n", "", "item name")
	fs.StringVar(&description, "desc", "", "item description")
	fs.IntVar(&quantity, "qty", 0, "starting quantity")
	fs.IntVar(&quantity, "q", 0, "starting quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.Inventory.AddItem(ctx, name, description, quantity)
	if err != nil {
		return explain(err)
	}

	a.success("Added item %d", id)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	if err := a.flagSet("list").Parse(args); err != nil {
		return err
	}

	items, err := a.Inventory.GetAllItems(ctx)
	if err != nil {
		return explain(err)
	}
	if len(items) == 0 {
		a.notice("No items")
		return nil
	}

	cyan.Fprintf(a.Out, "%-6s %-20s %8s  %s\n", "ID", "NAME", "QUANTITY", "DESCRIPTION")
	for _, item := range items {
		fmt.Fprintf(a.Out, "%-6d %-20s %8d  %s\n", item.ID, item.Name, item.Quantity, item.Description)
	}
	return nil
}

func (a *App) update(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	var name string
	var quantity int
	fs.StringVar(&name, "name", "", "new item name")
	fs.StringVar(&name, "n", "", "new item name")
	fs.IntVar(&quantity, "qty", 0, "new quantity")
	fs.IntVar(&quantity, "q", 0, "new quantity")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := itemID(positional)
	if err != nil {
		return err
	}

	found, err := a.Inventory.UpdateItem(ctx, model.Item{ID: id, Name: name, Quantity: quantity})
	if err != nil {
		return explain(err)
	}
	if !found {
		return notFound(id)
	}

	a.success("Updated item %d", id)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	var yes bool
	fs.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	fs.BoolVar(&yes, "y", false, "skip the confirmation prompt")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := itemID(positional)
	if err != nil {
		return err
	}

	if !yes {
		item, err := a.Inventory.GetItem(ctx, id)
		if err != nil {
			return explain(err)
		}
		if item == nil {
			return notFound(id)
		}
		ok, err := a.Confirmer.Confirm(fmt.Sprintf("Delete %q (id %d)?", item.Name, id))
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			a.notice("Cancelled")
			return nil
		}
	}

	found, err := a.Inventory.DeleteItem(ctx, id)
	if err != nil {
		return explain(err)
	}
	if !found {
		return notFound(id)
	}

	a.success("Deleted item %d", id)
	return nil
}

func (a *App) inc(ctx context.Context, args []string) error {
	return a.adjust(ctx, "inc", args, a.Inventory.IncrementQuantity)
}

func (a *App) dec(ctx context.Context, args []string) error {
	return a.adjust(ctx, "dec", args, a.Inventory.DecrementQuantity)
}

func (a *App) adjust(ctx context.Context, name string, args []string, fn func(context.Context, int64) (bool, error)) error {
	fs := a.flagSet(name)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := itemID(positional)
	if err != nil {
		return err
	}

	found, err := fn(ctx, id)
	if err != nil {
		return explain(err)
	}
	if !found {
		return notFound(id)
	}

	item, err := a.Inventory.GetItem(ctx, id)
	if err != nil {
		return explain(err)
	}
	if item == nil {
		return notFound(id)
	}
	a.success("%s: %d", item.Name, item.Quantity)
	return nil
}

func itemID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one item id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", args[0])
	}
	return id, nil
}

func notFound(id int64) error {
	return fmt.Errorf("item %d not found", id)
}
