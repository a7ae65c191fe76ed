package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poultryops/internal/config"
	"poultryops/internal/infra"
	"poultryops/internal/router"
	"poultryops/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger: dev pretty, prod JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Composition root: the worker pool and the sweep ticker get their
	// dependencies wired here so the worker package stays service-free.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	r, pointsSvc := router.New(cfg, db, rdb, dispatcher)

	alertWorker := worker.NewAlertWorker(dispatcher, cfg.AlertEmail)
	handlers := worker.Handlers{
		"variance_alert": alertWorker.Process,
		"email": func(ctx context.Context, raw json.RawMessage) error {
			var p worker.EmailPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil
			}
			return mailer.SendAlert(p.To, p.Subject, p.Body)
		},
	}
	worker.StartPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	worker.StartSettlementCron(ctx, cfg.CronHour, worker.SweepFuncs{
		MissedSettlements: pointsSvc.CheckMissedSettlements,
		MonthlySnapshot: func(ctx context.Context, year, month int) error {
			_, err := pointsSvc.GenerateMonthly(ctx, year, month)
			return err
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("poultryops backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
