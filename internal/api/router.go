package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/stockmate/internal/model"
)

// CredentialStore is the user side of the store used by the API.
type CredentialStore interface {
	AddUser(ctx context.Context, username, password string) error
	ValidateCredentials(ctx context.Context, username, password string) (bool, error)
	GetUser(ctx context.Context, username string) (*model.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

// InventoryStore is the item side of the store used by the API.
type InventoryStore interface {
	AddItem(ctx context.Context, name, description string, quantity int) (int64, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	GetAllItems(ctx context.Context) ([]model.Item, error)
	UpdateItem(ctx context.Context, item model.Item) (bool, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
	IncrementQuantity(ctx context.Context, id int64) (bool, error)
	DecrementQuantity(ctx context.Context, id int64) (bool, error)
}

// Config holds router settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *slog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(creds CredentialStore, inv InventoryStore, cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	mux := http.NewServeMux()

	authHandler := &AuthHandler{Credentials: creds, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL, Logger: logger}
	usersHandler := &UsersHandler{Credentials: creds, Logger: logger}
	itemsHandler := &ItemsHandler{Inventory: inv, Logger: logger}

	authMW := AuthMiddleware(cfg.JWTSecret)

	// Public: registration and login.
	mux.HandleFunc("POST /api/users", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/users", authMW(http.HandlerFunc(usersHandler.List)))

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/{id}/increment", authMW(http.HandlerFunc(itemsHandler.Increment)))
	mux.Handle("POST /api/items/{id}/decrement", authMW(http.HandlerFunc(itemsHandler.Decrement)))

	return LoggingMiddleware(logger)(mux)
}
