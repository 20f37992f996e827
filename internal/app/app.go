// Package app wires the configured gateway client, local storage and
// services together for the commands.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/addressbook"
	"github.com/storefront/cli/internal/api"
	"github.com/storefront/cli/internal/cart"
	"github.com/storefront/cli/internal/catalog"
	"github.com/storefront/cli/internal/checkout"
	"github.com/storefront/cli/internal/config"
	"github.com/storefront/cli/internal/logging"
	"github.com/storefront/cli/internal/login"
	"github.com/storefront/cli/internal/session"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/wishlist"
)

// App holds everything a command needs.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store     *storage.FileStore
	Client    *api.Client
	Session   *session.Manager
	Wishlist  *wishlist.Store
	Cart      *cart.Service
	Catalog   *catalog.Service
	Addresses *addressbook.Book
	Checkout  *checkout.Service
}

var current *App

// New opens local storage and builds the services for cfg.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	client := api.NewClient(cfg.Server.URL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger.Named("api")),
	)
	sess := session.NewManager(store, client, logger.Named("session"))
	sess.ClearOnUnauthorized(client)

	wl := wishlist.New(store, logger.Named("wishlist"))
	bag := cart.New(client, sess, wl, cfg.Checkout.ConvenienceFee, logger.Named("cart"))
	book := addressbook.New(client, sess, logger.Named("addresses"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Client:    client,
		Session:   sess,
		Wishlist:  wl,
		Cart:      bag,
		Catalog:   catalog.New(client, bag, sess),
		Addresses: book,
		Checkout:  checkout.New(client, book, bag, sess, store, logger.Named("checkout")),
	}, nil
}

// NewLoginController creates a login flow bound to the session.
func (a *App) NewLoginController() (*login.Controller, error) {
	policy, err := login.ParsePolicy(a.Config.Login.ExistenceCheckUnavailable)
	if err != nil {
		return nil, err
	}
	return login.NewController(a.Client, a.Session, login.Options{
		ResendSeconds: a.Config.Login.ResendSeconds,
		OTPLength:     a.Config.Login.OTPLength,
		Policy:        policy,
		Logger:        a.Logger.Named("login"),
	}), nil
}

// Set makes a the application used by Get.
func Set(a *App) {
	current = a
}

// Get returns the application built by the root command.
func Get() (*App, error) {
	if current == nil {
		return nil, errors.New("application not initialized")
	}
	return current, nil
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}
