package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/stockmate/internal/api"
	"github.com/erazemk/stockmate/internal/cli"
	"github.com/erazemk/stockmate/internal/config"
	"github.com/erazemk/stockmate/internal/logging"
	"github.com/erazemk/stockmate/internal/store"
)

func usage() {
	fmt.Fprint(os.Stdout, `Usage: stockmate [flags] <command> [command flags] [args]

Flags:
  -c, -config <path>      YAML or TOML config file (default: built-in defaults)
  -d, -db <path>          SQLite database path (default: stockmate.sqlite3)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Commands:
  serve      start the HTTP API (-a, -addr <host:port>)
`)
	cli.Commands(os.Stdout)
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("stockmate", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = usage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if fs.NArg() == 0 {
		usage()
		return 1
	}
	command, args := fs.Arg(0), fs.Args()[1:]
	if command != "serve" && !cli.Has(command) {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		return 1
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logPath != "" {
		cfg.Logging.File = logPath
	}

	level := cfg.Logging.Level
	if command != "serve" {
		// Keep client output readable.
		if l, err := logging.ParseLevel(level); err == nil && l < slog.LevelWarn {
			level = "warn"
		}
	}
	closeLog, err := logging.Setup(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := store.Shared(ctx, store.Options{
		Path:         cfg.Database.Path,
		Schema:       cfg.Schema(),
		Limits:       cfg.Limits,
		InsertPolicy: cfg.Items.InsertPolicy,
		OpTimeout:    cfg.Database.OpTimeout,
	})
	if err != nil {
		slog.Error("failed to open store", "path", cfg.Database.Path, "error", err)
		fmt.Fprintln(os.Stderr, "error: storage is unavailable")
		return 1
	}
	defer s.Close()

	if command == "serve" {
		if err := serve(ctx, cfg, s, args); err != nil {
			slog.Error("server error", "error", err)
			return 1
		}
		return 0
	}

	app := cli.New(s.Credentials(), s.Inventory(), os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(ctx, append([]string{command}, args...)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := cfg.Server.Addr
	fs.StringVar(&addr, "addr", addr, "listen address")
	fs.StringVar(&addr, "a", addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := cfg.Server.JWTSecret
	if secret == "" {
		secret = rand.Text()
		slog.Warn("no server.jwt_secret configured, tokens will not survive a restart")
	}

	handler := api.NewRouter(s.Credentials(), s.Inventory(), api.Config{
		JWTSecret: secret,
		TokenTTL:  cfg.Server.TokenTTL,
		Logger:    slog.Default(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr, "db", cfg.Database.Path)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
