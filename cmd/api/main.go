// Command api serves the authoritative moderation and banner store over
// MongoDB and publishes moderation notifications to RabbitMQ.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hirehub/portal-core/internal/api"
	"github.com/hirehub/portal-core/internal/api/handler"
	"github.com/hirehub/portal-core/internal/core/service"
	"github.com/hirehub/portal-core/internal/infrastructure/config"
	mongodb "github.com/hirehub/portal-core/internal/infrastructure/db/mongo"
	"github.com/hirehub/portal-core/internal/infrastructure/queue"
	"github.com/hirehub/portal-core/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "api"})

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		Timeout:     cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	entities := mongodb.NewEntityRepository(db)
	banners := mongodb.NewBannerRepository(db)
	if err := mongodb.EnsureIndexes(ctx, entities, banners); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	publisher, err := queue.DialAMQP(queue.AMQPConfig{
		URL:            cfg.RabbitMQ.URL,
		Queue:          cfg.RabbitMQ.Queue,
		PublishTimeout: cfg.RabbitMQ.PublishTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer func() { _ = publisher.Close() }()

	dispatcher := queue.NewDispatcher(cfg.RabbitMQ.Workers, publisher, logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Deps{
		Moderation: service.NewModerationService(entities, dispatcher, logger.Component("moderation")),
		Banners:    service.NewBannerService(banners, logger.Component("banners")),
		JWTSecret:  cfg.JWT.Secret,
		Dependencies: []handler.Dependency{
			handler.MongoDependency(db),
			{Name: "rabbitmq", Ping: publisher.Ping},
		},
		Logger: log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		stopWorkers()
		dispatcher.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("api stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("api stopped")
}
