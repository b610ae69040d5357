// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package feed

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// WriteSQLite exports the feed into a new SQLite database. Referential integrity
// is enforced with foreign keys, so a feed with dangling references can't be exported.
// An existing database at path is replaced only after a successful export.
func (f *Feed) WriteSQLite(ctx context.Context, path string) error {
	tempPath := getTempOutputPath(path)
	if err := os.Remove(tempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := f.writeSQLite(ctx, tempPath); err != nil {
		os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}

func (f *Feed) writeSQLite(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	if _, err = db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserts := []func(context.Context, *sql.Tx) error{
		f.insertAgency,
		f.insertStops,
		f.insertRoutes,
		f.insertCalendarDates,
		f.insertTrips,
		f.insertStopTimes,
		f.insertFareAttributes,
		f.insertFeedInfo,
	}
	for _, insert := range inserts {
		if err = insert(ctx, tx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertMany prepares query and executes it for every element of rows.
func insertMany[T any](ctx context.Context, tx *sql.Tx, table, query string, rows []T, args func(T) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

func (f *Feed) insertAgency(ctx context.Context, tx *sql.Tx) error {
	a := f.Agency
	_, err := tx.ExecContext(ctx,
		"INSERT INTO agency (agency_id, agency_name, agency_url, agency_timezone, agency_lang) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.Name, a.URL, a.Timezone, a.Lang,
	)
	if err != nil {
		return fmt.Errorf("agency: %w", err)
	}
	return nil
}

func (f *Feed) insertStops(ctx context.Context, tx *sql.Tx) error {
	return insertMany(ctx, tx, "stops",
		"INSERT INTO stops (stop_id, stop_name, stop_lat, stop_lon) VALUES (?, ?, ?, ?)",
		f.Stops,
		func(s Stop) []any { return []any{s.ID, s.Name, s.Lat, s.Lon} },
	)
}

func (f *Feed) insertRoutes(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (
			route_id, agency_id, route_short_name, route_long_name, route_type,
			route_color, route_text_color, sort_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("routes: %w", err)
	}
	defer stmt.Close()

	for i, r := range f.Routes {
		_, err = stmt.ExecContext(ctx, r.ID, r.AgencyID, r.ShortName, r.LongName, r.Type, r.Color, r.TextColor, i)
		if err != nil {
			return fmt.Errorf("routes: %w", err)
		}
	}
	return nil
}

func (f *Feed) insertCalendarDates(ctx context.Context, tx *sql.Tx) error {
	return insertMany(ctx, tx, "calendar_dates",
		"INSERT INTO calendar_dates (service_id, date, exception_type) VALUES (?, ?, ?)",
		f.CalendarDates,
		func(d CalendarDate) []any { return []any{d.ServiceID, d.Date.GTFS(), d.ExceptionType} },
	)
}

func (f *Feed) insertTrips(ctx context.Context, tx *sql.Tx) error {
	return insertMany(ctx, tx, "trips",
		"INSERT INTO trips (trip_id, route_id, service_id, trip_headsign, team_id) VALUES (?, ?, ?, ?, ?)",
		f.Trips,
		func(t Trip) []any { return []any{t.ID, t.RouteID, t.ServiceID, t.Headsign, t.CrewID} },
	)
}

func (f *Feed) insertStopTimes(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stop_times (trip_id, arrival_time, departure_time, stop_id, stop_sequence)
		VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("stop_times: %w", err)
	}
	defer stmt.Close()

	for _, t := range f.Trips {
		for _, st := range t.StopTimes {
			_, err = stmt.ExecContext(ctx, t.ID, st.ArrivalTime.String(), st.DepartureTime.String(), st.StopID, st.Sequence)
			if err != nil {
				return fmt.Errorf("stop_times: trip %s: %w", t.ID, err)
			}
		}
	}
	return nil
}

func (f *Feed) insertFareAttributes(ctx context.Context, tx *sql.Tx) error {
	return insertMany(ctx, tx, "fare_attributes", `
		INSERT INTO fare_attributes (fare_id, price, currency_type, payment_method, transfers, transfer_duration)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.FareAttributes,
		func(a config.Fare) []any {
			return []any{a.ID, a.Price, a.Currency, a.PaymentMethod, a.Transfers, a.TransferDuration}
		},
	)
}

func (f *Feed) insertFeedInfo(ctx context.Context, tx *sql.Tx) error {
	if f.FeedInfo == nil {
		return nil
	}

	i := f.FeedInfo
	_, err := tx.ExecContext(ctx,
		"INSERT INTO feed_info (feed_publisher_name, feed_publisher_url, feed_lang, feed_version) VALUES (?, ?, ?, ?)",
		i.PublisherName, i.PublisherURL, i.Lang, i.Version,
	)
	if err != nil {
		return fmt.Errorf("feed_info: %w", err)
	}
	return nil
}
