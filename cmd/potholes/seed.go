package main

import (
	"context"
	"fmt"

	"potholes/internal/db"
	"potholes/internal/notify"
	"potholes/internal/seed"
	"potholes/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Submit a handful of demo reports through the normal submission path",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		blobs, err := newBlobStore(ctx, cfg)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logger := logrus.StandardLogger()

		// demo data should not email officials
		svc, err := newReportService(cfg, logger, store.NewReportRepository(pool), store.NewReportStatusEventRepository(pool), blobs, notify.Noop{})
		if err != nil {
			return err
		}

		logrus.Info("Seeding reports...")
		if err := seed.SeedReports(ctx, logger, svc, seed.DemoReports); err != nil {
			return err
		}

		logrus.WithField("count", len(seed.DemoReports)).Info("Reports seeded successfully")

		return nil
	},
}
