package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielShofela/Stock/internal/config"
	"github.com/DanielShofela/Stock/internal/infra"
	"github.com/DanielShofela/Stock/internal/repository"
	"github.com/DanielShofela/Stock/internal/router"
	"github.com/DanielShofela/Stock/internal/service"
	"github.com/DanielShofela/Stock/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
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

	// The default warehouse must exist before the first movement is recorded.
	events := infra.NewEventBus(rdb)
	warehouseRepo := repository.NewWarehouseRepository(db)
	warehouseSvc := service.NewWarehouseService(warehouseRepo, events)
	if err := warehouseSvc.EnsureDefault(ctx, cfg.DefaultWarehouse); err != nil {
		log.Fatal().Err(err).Msg("failed to provision default warehouse")
	}

	// Start goroutine worker pool for async tasks (report rendering, email).
	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)
	stockRepo := repository.NewStockRepository(db)
	reportSvc := service.NewReportService(stockRepo, dispatcher, infra.GenerateMovementReportPDF, cfg.ReportStoragePath)

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueReports, worker.NewReportWorker(reportSvc, dispatcher, cfg.ReportStoragePath).Process)
	pool.Register(worker.QueueEmail, worker.NewEmailWorker(mailer, mailCB).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	// Periodically drains the email DLQ once the SMTP relay recovers.
	worker.StartRequeueCron(ctx, rdb, mailCB)

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("stock backend listening on :%d", cfg.Port)
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
