package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"sugarbeat/internal/config"
	"sugarbeat/internal/db"
	"sugarbeat/internal/db/mock"
	applog "sugarbeat/internal/log"
	"sugarbeat/internal/provider"
	"sugarbeat/internal/provider/edamam"
	"sugarbeat/internal/provider/usda"
	"sugarbeat/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newProviderFunc     = newProvider
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.UseMock {
		applog.Info(ctx, "using seeded in-memory database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	foods, err := newProviderFunc(cfg.Provider)
	if err != nil {
		applog.Error(ctx, "failed to configure food provider", "error", err)
		return 1
	}

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Database: database,
		Provider: foods,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	shutdown, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "provider", foods.Name())
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-shutdown:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	return 0
}

// newProvider builds the configured food database client.
func newProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	limiter := provider.LimiterConfig{RequestsPerSecond: cfg.RequestsPerSecond, Burst: cfg.Burst}
	switch cfg.Name {
	case config.ProviderEdamam, "":
		return edamam.NewClient(edamam.Config{
			AppID:   cfg.Edamam.AppID,
			AppKey:  cfg.Edamam.AppKey,
			BaseURL: cfg.Edamam.BaseURL,
			Timeout: cfg.Timeout,
			Limiter: limiter,
		}), nil
	case config.ProviderUSDA:
		return usda.NewClient(usda.Config{
			APIKey:  cfg.USDA.APIKey,
			BaseURL: cfg.USDA.BaseURL,
			Timeout: cfg.Timeout,
			Limiter: limiter,
		}), nil
	default:
		return nil, fmt.Errorf("unknown food provider %q", cfg.Name)
	}
}
