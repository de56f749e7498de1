package main

import (
	"context"
	"fmt"
	"time"

	"potholes/internal/db"
	"potholes/internal/reports"
	"potholes/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// uploads for a submission finish well inside a day
const defaultSweepAge = 24 * time.Hour

var sweepCommand = &cli.Command{
	Name:  "sweep",
	Usage: "Delete bucket images that no report references",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "older-than",
			Usage: "Only consider objects at least this old",
			Value: defaultSweepAge,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "List orphaned images without deleting them",
		},
	},
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

		sweeper := reports.NewSweeper(logrus.StandardLogger(), store.NewReportRepository(pool), blobs)

		result, err := sweeper.Sweep(ctx, c.Duration("older-than"), c.Bool("dry-run"))
		if err != nil {
			return err
		}

		for _, name := range result.Orphaned {
			fmt.Println(name)
		}

		if result.Failed > 0 {
			return fmt.Errorf("failed to delete %d of %d orphaned images", result.Failed, len(result.Orphaned))
		}

		return nil
	},
}
