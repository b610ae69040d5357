// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/calendar"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/processor"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/report"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/routes"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/snapshot"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/source"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/stops"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

var ErrNoActiveSnapshots = errors.New("no schedule snapshot is valid today or in the future")

// Builder merges multiple schedule snapshots into a single GTFS feed.
type Builder struct {
	Config   *config.Config
	Registry *stops.Registry
	Holidays calendar.Holidays
	Namer    feed.RouteNamer

	// Open returns the raw relations of a snapshot.
	// Defaults to source.MDB reading snapshot.Path.
	Open func(snapshot.Snapshot) source.Source

	// Today defaults to time2.Today().
	Today time2.Date

	// LastEnd, if set, overrides the end date of the newest snapshot.
	LastEnd time2.Date
}

// Plan computes the validity windows of the provided snapshots and returns
// only those which are still relevant.
func (b *Builder) Plan(snapshots []snapshot.Snapshot) ([]snapshot.Snapshot, error) {
	today := b.Today
	if today.IsZero() {
		today = time2.Today()
	}

	active, err := snapshot.Chain(snapshots, snapshot.ChainOptions{
		Today:      today,
		LengthDays: b.Config.ScheduleLengthDays,
		LastEnd:    b.LastEnd,
	})
	if err != nil {
		return nil, err
	} else if len(active) == 0 {
		return nil, ErrNoActiveSnapshots
	}
	return active, nil
}

// Build processes planned snapshots (see Plan) one by one and assembles the final feed.
func (b *Builder) Build(ctx context.Context, snapshots []snapshot.Snapshot) (*feed.Feed, *report.Report, error) {
	if len(snapshots) == 0 {
		return nil, nil, ErrNoActiveSnapshots
	}

	rep := &report.Report{Timestamp: time.Now()}
	assembler := feed.NewAssembler()

	for _, s := range snapshots {
		snapshotReport, err := b.addSnapshot(ctx, assembler, s)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot %s: %w", s.Version, err)
		}
		rep.Snapshots = append(rep.Snapshots, snapshotReport)
	}

	exported, missing := b.Registry.Export()
	for _, m := range missing {
		slog.Warn("Stop used, but not found in the stop database", "id", m.ID, "code", m.Code, "name", m.Name)
	}

	slog.Info("Finalizing feed", "snapshots", len(snapshots))
	f, stats, err := assembler.Finalize(ctx, b.Namer, exported, b.Config)
	if err != nil {
		return nil, nil, err
	}

	rep.FeedVersion = strings.Join(assembler.Versions(), "/")
	rep.Totals = stats
	rep.Stops = len(f.Stops)
	rep.MissingStops = missing
	return f, rep, nil
}

func (b *Builder) addSnapshot(ctx context.Context, assembler *feed.Assembler, s snapshot.Snapshot) (*report.Snapshot, error) {
	slog.Info("Processing snapshot", "version", s.Version, "start", s.Start, "end", s.End)

	tables, err := source.Load(ctx, b.open(s))
	if err != nil {
		return nil, err
	}

	result, err := processor.Process(s.Version, tables, b.Registry)
	if err != nil {
		return nil, err
	}

	dates := calendar.Generate(feed.IDPrefix(s.Version), s.Start, s.End, result.UsedServices, b.Holidays)
	assembler.Add(s.Version, result.Trips, dates)

	slog.Debug("Snapshot processed", "version", s.Version, "trips", result.Stats.Trips, "calendar_dates", len(dates))
	return &report.Snapshot{
		Version:       s.Version,
		Start:         s.Start,
		End:           s.End,
		CalendarDates: len(dates),
		Routes:        slices.SortedFunc(result.UsedRoutes.All(), routes.CompareIDs),
		Stats:         result.Stats,
	}, nil
}

func (b *Builder) open(s snapshot.Snapshot) source.Source {
	if b.Open != nil {
		return b.Open(s)
	}
	return source.MDB{Path: s.Path}
}
