// Command portal serves the client-facing web tier: per-client sessions in
// Redis, route guarding, and moderation and banner workflows that call the
// authoritative API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hirehub/portal-core/internal/api/handler"
	"github.com/hirehub/portal-core/internal/core/guard"
	"github.com/hirehub/portal-core/internal/core/session"
	"github.com/hirehub/portal-core/internal/infrastructure/authority"
	"github.com/hirehub/portal-core/internal/infrastructure/config"
	redisdb "github.com/hirehub/portal-core/internal/infrastructure/db/redis"
	"github.com/hirehub/portal-core/internal/portal"
	"github.com/hirehub/portal-core/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "portal"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	client := authority.NewClient(cfg.Authority.BaseURL, authority.WithTimeout(cfg.Authority.Timeout))

	e := portal.NewRouter(portal.Deps{
		Sessions:   session.NewFactory(redisdb.NewSessionRecords(rdb), cfg.Portal.SessionTTL, logger.Component("session")),
		Guard:      guard.New(cfg.Guard.Routes()),
		Moderation: client,
		Ordering:   client,
		Cookie: portal.CookieConfig{
			Secure: cfg.Portal.CookieSecure,
			Domain: cfg.Portal.CookieDomain,
			MaxAge: int(cfg.Portal.SessionTTL.Seconds()),
		},
		Dependencies: []handler.Dependency{handler.RedisDependency(rdb)},
		Logger:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Portal.Port).Msg("portal listening")
		if err := e.Start(":" + cfg.Portal.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("portal stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("portal stopped")
}
