package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"potholes/internal/db"
	"potholes/internal/reports"
	"potholes/internal/store"
	"potholes/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var reportsCommand = &cli.Command{
	Name:  "reports",
	Usage: "Print reports, filtered and sorted like the dashboard",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "status",
			Usage: "all, reported, in_progress or resolved",
			Value: "all",
		},
		&cli.StringFlag{
			Name:  "severity",
			Usage: "all, minor, moderate or severe",
			Value: "all",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "date or severity",
			Value: "date",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Dump full report structs",
		},
	},
	Action: func(c *cli.Context) error {
		q, err := types.ParseReportQuery(c.String("status"), c.String("severity"), c.String("sort"))
		if err != nil {
			return err
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		found, err := store.NewReportRepository(pool).Reports(ctx, q)
		if err != nil {
			return err
		}

		if c.Bool("pretty") {
			_, err := pp.Println(found)
			return err
		}

		sum := reports.Summarize(found)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tSEVERITY\tSTATUS\tLOCATION\tREPORTER\tIMAGES")
		for _, r := range found {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.5f,%.5f\t%s\t%d\n",
				r.ID,
				r.CreatedAt.Format("2006-01-02 15:04"),
				r.Severity,
				r.Status,
				r.Latitude, r.Longitude,
				r.ReporterDisplayName(),
				len(r.ImageURLs),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d report(s): %d severe, %d moderate, %d minor\n", sum.Total, sum.Severe, sum.Moderate, sum.Minor)
		return nil
	},
}
