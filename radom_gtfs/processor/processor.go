// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package processor

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/calendar"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/source"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/stops"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/set"
)

// ErrUnknownReference is returned when a relation references a row
// which does not exist in another relation.
type ErrUnknownReference struct {
	Table, Column string
	ID            int
}

func (e ErrUnknownReference) Error() string {
	return fmt.Sprintf("%s.%s references unknown id %d", e.Table, e.Column, e.ID)
}

type ErrDuplicateID struct {
	Table string
	ID    int
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("%s: duplicate id %d", e.Table, e.ID)
}

type Stats struct {
	RawTrips        int      `json:"raw_trips"`
	Trips           int      `json:"trips"`
	ShortTrips      int      `json:"short_trips"`
	IgnoredEvents   int      `json:"ignored_events"`
	InvalidEvents   int      `json:"invalid_events"`
	RenamedTrips    int      `json:"renamed_trips"`
	MissingDayTypes []string `json:"missing_day_types,omitempty"`
}

// Result contains the normalized contents of a single snapshot.
// All identifiers are already prefixed with the snapshot version.
type Result struct {
	Version      string
	Trips        []feed.Trip
	UsedServices set.Set[calendar.DayType]

	// UsedRoutes lists routes of the snapshot's retained trips. It only serves diagnostics,
	// as the final route list depends on trips surviving the feed-wide pass.
	UsedRoutes set.Set[string]
	Stats      Stats
}

// Process normalizes the relations of a single snapshot into GTFS trips.
// Stops are resolved and marked as used in the registry.
func Process(version string, t *source.Tables, registry *stops.Registry) (*Result, error) {
	p := &processor{
		version:  version,
		prefix:   feed.IDPrefix(version),
		tables:   t,
		registry: registry,
		result: &Result{
			Version:      version,
			UsedServices: make(set.Set[calendar.DayType]),
			UsedRoutes:   make(set.Set[string]),
		},
	}

	if err := p.mapPatterns(); err != nil {
		return nil, err
	}
	if err := p.mapDayTypes(); err != nil {
		return nil, err
	}
	if err := p.loadTrips(); err != nil {
		return nil, err
	}
	if err := p.loadEvents(); err != nil {
		return nil, err
	}
	p.finalizeTrips()

	return p.result, nil
}

type processor struct {
	version  string
	prefix   string
	tables   *source.Tables
	registry *stops.Registry
	result   *Result

	routeByPattern map[int]string
	dayTypeByID    map[int]calendar.DayType
	stakes         map[int]source.Stake
	trips          []pendingTrip
	tripHandleByID map[int]int
}

// pendingTrip is a trip before stop-time events are attached and validated.
type pendingTrip struct {
	trip    feed.Trip
	dayType calendar.DayType
	events  []source.StopEvent
}

func (p *processor) mapPatterns() error {
	routeByLine := make(map[int]string, len(p.tables.Lines))
	for _, l := range p.tables.Lines {
		routeByLine[l.ID] = l.RouteCode
	}

	p.routeByPattern = make(map[int]string, len(p.tables.Patterns))
	for _, pattern := range p.tables.Patterns {
		route, ok := routeByLine[pattern.LineID]
		if !ok {
			return ErrUnknownReference{string(source.Patterns), "line_id", pattern.LineID}
		}
		p.routeByPattern[pattern.ID] = route
	}
	return nil
}

func (p *processor) mapDayTypes() error {
	p.dayTypeByID = make(map[int]calendar.DayType, len(p.tables.DayTypes))
	present := make(set.Set[calendar.DayType], len(calendar.AllDayTypes))

	for _, raw := range p.tables.DayTypes {
		dayType, err := calendar.ParseDayType(raw.Name)
		if err != nil {
			return fmt.Errorf("day type %d: %w", raw.ID, err)
		}
		p.dayTypeByID[raw.ID] = dayType
		present.Add(dayType)
	}

	for _, dayType := range calendar.AllDayTypes {
		if !present.Has(dayType) {
			p.result.Stats.MissingDayTypes = append(p.result.Stats.MissingDayTypes, dayType.String())
		}
	}
	if len(p.result.Stats.MissingDayTypes) > 0 {
		slog.Warn(
			"Snapshot does not define all day types",
			"version", p.version,
			"missing", p.result.Stats.MissingDayTypes,
		)
	}
	return nil
}

func (p *processor) loadTrips() error {
	raw := slices.SortedStableFunc(slices.Values(p.tables.Trips), func(a, b source.Trip) int {
		return cmp.Compare(a.ID, b.ID)
	})

	p.trips = make([]pendingTrip, 0, len(raw))
	p.tripHandleByID = make(map[int]int, len(raw))
	usedIDs := make(map[string]int, len(raw))

	for _, t := range raw {
		if _, duplicate := p.tripHandleByID[t.ID]; duplicate {
			return ErrDuplicateID{string(source.Trips), t.ID}
		}

		routeID, ok := p.routeByPattern[t.PatternID]
		if !ok {
			return ErrUnknownReference{string(source.Trips), "pattern_id", t.PatternID}
		}

		dayType, ok := p.dayTypeByID[t.DayTypeID]
		if !ok {
			return ErrUnknownReference{string(source.Trips), "day_type_id", t.DayTypeID}
		}

		id := fmt.Sprintf("%s-%s-%d-%s", routeID, dayType, t.PatternID, t.StartTime.HHMM())
		usedIDs[id]++
		if n := usedIDs[id]; n > 1 {
			id = id + "-" + strconv.Itoa(n)
			p.result.Stats.RenamedTrips++
		}

		p.tripHandleByID[t.ID] = len(p.trips)
		p.trips = append(p.trips, pendingTrip{
			trip: feed.Trip{
				RouteID: routeID,
				ID:      id,
				CrewID:  t.CrewID,
			},
			dayType: dayType,
		})
	}

	p.result.Stats.RawTrips = len(p.trips)
	return nil
}

func (p *processor) loadEvents() error {
	p.stakes = make(map[int]source.Stake, len(p.tables.Stakes))
	for _, s := range p.tables.Stakes {
		p.stakes[s.ID] = s
	}

	for _, e := range p.tables.StopEvents {
		handle, ok := p.tripHandleByID[e.TripID]
		if !ok {
			return ErrUnknownReference{string(source.StopEvents), "trip_id", e.TripID}
		}

		if p.registry.IsIgnored(e.StopID) {
			p.result.Stats.IgnoredEvents++
			continue
		}

		switch p.registry.Resolve(e.StopID) {
		case stops.StatusInvalid:
			s := p.stakes[e.StopID]
			p.registry.RecordInvalidReference(e.StopID, s.Code, s.Name)
			p.result.Stats.InvalidEvents++

		case stops.StatusKnown:
			p.trips[handle].events = append(p.trips[handle].events, e)
		}
	}
	return nil
}

func (p *processor) finalizeTrips() {
	p.result.Trips = make([]feed.Trip, 0, len(p.trips))

	for i := range p.trips {
		pending := &p.trips[i]
		if len(pending.events) < 2 {
			p.result.Stats.ShortTrips++
			continue
		}

		slices.SortStableFunc(pending.events, func(a, b source.StopEvent) int {
			return cmp.Compare(a.Sequence, b.Sequence)
		})

		trip := pending.trip
		trip.ID = p.prefix + trip.ID
		trip.ServiceID = calendar.ServiceID(p.prefix, pending.dayType)
		trip.StopTimes = make([]feed.StopTime, len(pending.events))
		for seq, e := range pending.events {
			trip.StopTimes[seq] = feed.StopTime{
				ArrivalTime:   e.Time,
				DepartureTime: e.Time,
				StopID:        e.StopID,
				Sequence:      seq,
			}
			p.registry.MarkUsed(e.StopID)
		}
		trip.Headsign = p.registry.Name(pending.events[len(pending.events)-1].StopID)

		p.result.Trips = append(p.result.Trips, trip)
		p.result.UsedRoutes.Add(trip.RouteID)
		p.result.UsedServices.Add(pending.dayType)
	}

	p.result.Stats.Trips = len(p.result.Trips)
}
