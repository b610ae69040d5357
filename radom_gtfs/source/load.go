// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

type ErrInvalidValue struct {
	Table, Column string
	Line          int
	Reason        error
}

func (e ErrInvalidValue) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s:%d: invalid %s", e.Table, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d: invalid %s: %s", e.Table, e.Line, e.Column, e.Reason)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Reason
}

// Load reads all relations of a snapshot. The stakes relation is optional
// and only skipped if the Source reports it as not existing.
func Load(ctx context.Context, src Source) (t *Tables, err error) {
	t = new(Tables)
	schema := src.Schema()

	t.Lines, err = loadRelation(ctx, src, schema[Lines], Lines, parseLine)
	if err != nil {
		return nil, err
	}

	t.Patterns, err = loadRelation(ctx, src, schema[Patterns], Patterns, parsePattern)
	if err != nil {
		return nil, err
	}

	t.DayTypes, err = loadRelation(ctx, src, schema[DayTypes], DayTypes, parseDayType)
	if err != nil {
		return nil, err
	}

	t.Trips, err = loadRelation(ctx, src, schema[Trips], Trips, parseTrip)
	if err != nil {
		return nil, err
	}

	t.StopEvents, err = loadRelation(ctx, src, schema[StopEvents], StopEvents, parseStopEvent)
	if err != nil {
		return nil, err
	}

	t.Stakes, err = loadRelation(ctx, src, schema[Stakes], Stakes, parseStake)
	if errors.Is(err, fs.ErrNotExist) {
		t.Stakes, err = nil, nil
	} else if err != nil {
		return nil, err
	}

	return
}

func loadRelation[T any](ctx context.Context, src Source, table Table, rel Relation, parse func(*row) T) ([]T, error) {
	f, err := src.Open(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.Name, err)
	}
	defer f.Close()

	r := mcsv.NewReader(f)
	if err := r.Require(table.PhysicalColumns()...); err != nil {
		return nil, fmt.Errorf("%s: %w", table.Name, err)
	}

	var objects []T
	current := &row{table: table, reader: r}
	for current.record = range r.Iter() {
		o := parse(current)
		if current.err != nil {
			return nil, current.err
		}
		objects = append(objects, o)
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", table.Name, err)
	}
	return objects, nil
}

// row wraps a CSV record with helpers for retrieving logical columns.
// The first encountered error is remembered, and all further calls become no-ops.
type row struct {
	table  Table
	reader *mcsv.Reader
	record map[string]string
	err    error
}

func (r *row) invalid(column string, reason error) {
	if r.err == nil {
		r.err = ErrInvalidValue{r.table.Name, r.table.Column(column), r.reader.Line(), reason}
	}
}

func (r *row) str(column string) string {
	return strings.TrimSpace(r.record[r.table.Column(column)])
}

func (r *row) int(column string) int {
	if r.err != nil {
		return 0
	}

	i, err := strconv.Atoi(r.str(column))
	if err != nil {
		r.invalid(column, err)
	}
	return i
}

func (r *row) time(column string) time2.Time {
	if r.err != nil {
		return 0
	}

	t, err := time2.ParseMinutes(r.str(column))
	if err != nil {
		r.invalid(column, err)
	}
	return t
}

func parseLine(r *row) Line {
	l := Line{ID: r.int("id"), RouteCode: r.str("route_code")}
	if l.RouteCode == "" {
		r.invalid("route_code", nil)
	}
	return l
}

func parsePattern(r *row) Pattern {
	return Pattern{ID: r.int("id"), LineID: r.int("line_id")}
}

func parseDayType(r *row) DayType {
	return DayType{ID: r.int("id"), Name: r.str("name")}
}

func parseTrip(r *row) Trip {
	return Trip{
		ID:        r.int("id"),
		PatternID: r.int("pattern_id"),
		DayTypeID: r.int("day_type_id"),
		StartTime: r.time("start_time"),
		CrewID:    r.str("crew_id"),
	}
}

func parseStopEvent(r *row) StopEvent {
	return StopEvent{
		TripID:   r.int("trip_id"),
		Time:     r.time("time"),
		StopID:   r.int("stop_id"),
		Sequence: r.int("sequence"),
	}
}

func parseStake(r *row) Stake {
	return Stake{ID: r.int("id"), Code: r.str("code"), Name: r.str("name")}
}
