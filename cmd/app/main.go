package main

//go:generate go run github.com/swaggo/swag/cmd/swag init -g cmd/app/main.go -o docs -d ../../ --parseInternal

import (
	"context"
	"crm/config"
	"crm/di"
	"crm/helper"
	"crm/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const flushTimeout = 10 * time.Second

// @title Hotel Sales CRM API
// @version 1.0
// @description Event leads, banquet proposals and pipeline dashboards for hotel sales teams.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app, err := di.InitializeApp()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.HTTP.Serve(gctx)
	})

	if cfg.Worker.FollowUp.Enable {
		group.Go(func() error {
			app.FollowUp.Run(gctx)

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("Application stopped with error")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := app.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka writer")
	}

	if err := app.Otel.Shutdown(flushCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Application stopped")
}
