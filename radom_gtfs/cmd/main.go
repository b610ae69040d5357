// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/calendar"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/pipeline"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/report"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/routes"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/snapshot"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/source"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/stops"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
	"github.com/joho/godotenv"
)

var (
	flagConfig        = flag.String("config", "", "path to a YAML config file, overriding the built-in defaults")
	flagOutput        = flag.String("output", "radom.zip", "path to the output GTFS zip archive")
	flagOutputDir     = flag.String("output-dir", "", "also write the GTFS tables into this directory")
	flagSQLite        = flag.String("sqlite", "", "also export the feed into a SQLite database at this path")
	flagReport        = flag.String("report", "", "write a JSON build report to this path")
	flagMissingStops  = flag.String("missing-stops", "", "write used, but unknown stops as CSV to this path")
	flagDBDir         = flag.String("db-dir", "data/databases", "directory for downloaded schedule databases")
	flagMDBExport     = flag.String("mdb-export", source.DefaultMDBExportTool, "path to the mdb-export executable")
	flagStopsCSV      = flag.String("stops-csv", "", "read stops from a local CSV file instead of the web service")
	flagEndDate       = flag.String("end-date", "", "end date (YYYY-MM-DD) of the newest schedule, instead of a fixed length")
	flagPublisherName = flag.String("publisher-name", "", "value of feed_info.feed_publisher_name")
	flagPublisherURL  = flag.String("publisher-url", "", "value of feed_info.feed_publisher_url")
	flagForce         = flag.Bool("force", false, "build the feed even if no schedule database has changed")
	flagVerbose       = flag.Bool("verbose", false, "show DEBUG logging")
)

func main() {
	flag.Parse()
	if *flagVerbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 2 * time.Minute}

	b := &pipeline.Builder{
		Config: cfg,
		Namer: routes.NewCachedNamer(
			routes.WebsiteNamer{BaseURL: cfg.Sources.RoutePagesURL, Client: client},
			256,
		),
		Open: func(s snapshot.Snapshot) source.Source {
			return source.MDB{Path: s.Path, Tool: *flagMDBExport}
		},
	}
	if *flagEndDate != "" {
		b.LastEnd, err = time2.ParseDate(*flagEndDate)
		if err != nil {
			log.Fatal(fmt.Errorf("-end-date: %w", err))
		}
	}

	slog.Info("Listing schedule databases")
	listed, err := snapshot.List(ctx, client, cfg.Sources.ListingURL)
	if err != nil {
		log.Fatal(err)
	}

	active, err := b.Plan(listed)
	if err != nil {
		log.Fatal(err)
	}
	slog.Debug("Planned schedule databases", "listed", len(listed), "active", len(active))

	changed, err := snapshot.NewSyncer(*flagDBDir, client, slog.Default()).Sync(ctx, active)
	if err != nil {
		log.Fatal(err)
	}
	if !changed && !*flagForce {
		slog.Info("Schedule databases have not changed, not rebuilding the feed")
		return
	}

	slog.Info("Loading stops")
	records, err := loadStops(ctx, client, cfg.Sources.StopsURL)
	if err != nil {
		log.Fatal(err)
	}
	b.Registry = stops.NewRegistry(records, cfg.IgnoredStops())
	slog.Debug("Loaded stops", "count", b.Registry.Len())

	slog.Info("Loading holidays")
	b.Holidays, err = calendar.FetchHolidays(ctx, client, cfg.Sources.HolidaysURL, cfg.Region)
	if err != nil {
		log.Fatal(err)
	}

	f, rep, err := b.Build(ctx, active)
	if err != nil {
		log.Fatal(err)
	}

	if err = writeOutput(ctx, f, rep); err != nil {
		log.Fatal(err)
	}
	slog.Info("Feed built successfully", "totals", rep.Totals, "warnings", rep.Warnings())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return nil, err
	}

	if *flagPublisherName == "" && *flagPublisherURL == "" {
		return cfg, nil
	}

	if *flagPublisherName != "" {
		cfg.Publisher.Name = *flagPublisherName
	}
	if *flagPublisherURL != "" {
		cfg.Publisher.URL = *flagPublisherURL
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadStops(ctx context.Context, client *http.Client, url string) ([]stops.Record, error) {
	if *flagStopsCSV == "" {
		return stops.FetchMyBus(ctx, client, url)
	}

	f, err := os.Open(*flagStopsCSV)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return stops.ReadCSV(f)
}

func writeOutput(ctx context.Context, f *feed.Feed, rep *report.Report) error {
	slog.Info("Writing GTFS", "path", *flagOutput)
	if err := f.WriteZip(*flagOutput); err != nil {
		return fmt.Errorf("%s: %w", *flagOutput, err)
	}

	if *flagOutputDir != "" {
		slog.Debug("Writing GTFS tables", "dir", *flagOutputDir)
		if err := os.MkdirAll(*flagOutputDir, 0o755); err != nil {
			return err
		}
		if err := f.WriteDir(*flagOutputDir); err != nil {
			return fmt.Errorf("%s: %w", *flagOutputDir, err)
		}
	}

	if *flagSQLite != "" {
		slog.Debug("Writing SQLite database", "path", *flagSQLite)
		if err := f.WriteSQLite(ctx, *flagSQLite); err != nil {
			return fmt.Errorf("%s: %w", *flagSQLite, err)
		}
	}

	if *flagReport != "" {
		slog.Debug("Writing report", "path", *flagReport)
		if err := rep.DumpJSONFile(*flagReport, report.HumanReadable); err != nil {
			return fmt.Errorf("%s: %w", *flagReport, err)
		}
	}

	if *flagMissingStops != "" {
		slog.Debug("Writing missing stops", "path", *flagMissingStops, "count", len(rep.MissingStops))
		if err := rep.DumpMissingStopsFile(*flagMissingStops); err != nil {
			return fmt.Errorf("%s: %w", *flagMissingStops, err)
		}
	}

	return nil
}
