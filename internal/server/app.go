// Package server wires configuration, storage, services and the HTTP API
// into a runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/defcomm/internal/logging"
	"github.com/dmitrijs2005/defcomm/internal/server/auth"
	"github.com/dmitrijs2005/defcomm/internal/server/config"
	"github.com/dmitrijs2005/defcomm/internal/server/httpapi"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/defcomm/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	auth        *services.AuthService
	server      *httpapi.Server
}

func NewApp(c *config.Config, l logging.Logger) (*App, error) {
	issuer, err := auth.NewIssuer(c.SecretKey, c.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session issuer: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	as := services.NewAuthService(rm, issuer)
	gs := services.NewGroupService(rm)
	srv := httpapi.NewServer(c, l, httpapi.Services{
		Auth:     as,
		Users:    services.NewUserService(rm),
		Groups:   gs,
		Messages: services.NewMessageService(rm, gs),
		Admin:    services.NewAdminService(rm),
	})

	return &App{config: c, logger: l, repomanager: rm, auth: as, server: srv}, nil
}

// prepare migrates the schema and seeds the bootstrap HQ account.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return err
	}

	if app.config.HQUserName == "" {
		return nil
	}
	created, err := app.auth.SeedHQ(ctx, app.config.HQUserName, app.config.HQPassword)
	if err != nil {
		return fmt.Errorf("seeding HQ account: %w", err)
	}
	if created {
		app.logger.Info(ctx, "Bootstrap HQ account created", "username", app.config.HQUserName)
	}
	return nil
}

// Run blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env)

	if err := app.prepare(ctx); err != nil {
		return err
	}

	if err := app.server.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
