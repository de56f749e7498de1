package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"potholes/internal/db"
	"potholes/internal/server"
	"potholes/internal/store"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	adminGate, err := newGate(config)
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(ctx, config)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	reportRepo := store.NewReportRepository(pool)
	eventRepo := store.NewReportStatusEventRepository(pool)

	notifier, dispatcher := newNotifier(config, logger)

	reportSvc, err := newReportService(config, logger, reportRepo, eventRepo, blobs, notifier)
	if err != nil {
		return err
	}

	srv, err := server.New(config, logger, reportSvc, adminGate)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Stop(shutdownCtx)

	if dispatcher != nil {
		logger.Info("waiting for pending notifications")
		dispatcher.Wait()
	}

	return err
}
