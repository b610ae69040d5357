// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package feed

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/routes"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/set"
)

// RouteNamer resolves route long names. Only called for routes which are part of the final feed.
type RouteNamer interface {
	LongName(ctx context.Context, routeID string) (string, error)
}

type FinalizeStats struct {
	DroppedTrips     int `json:"dropped_trips"`
	DroppedStopTimes int `json:"dropped_stop_times"`
	Routes           int `json:"routes"`
	Trips            int `json:"trips"`
	StopTimes        int `json:"stop_times"`
	CalendarDates    int `json:"calendar_dates"`
}

// Assembler accumulates trips and calendar dates from all processed snapshots,
// in the order they were added.
type Assembler struct {
	versions      []string
	trips         []Trip
	calendarDates []CalendarDate
}

func NewAssembler() *Assembler {
	return new(Assembler)
}

func (a *Assembler) Add(version string, trips []Trip, calendarDates []CalendarDate) {
	a.versions = append(a.versions, version)
	a.trips = append(a.trips, trips...)
	a.calendarDates = append(a.calendarDates, calendarDates...)
}

func (a *Assembler) Versions() []string {
	return a.versions
}

// Finalize runs the cross-snapshot consistency pass and returns the complete feed:
// trips with services absent from calendar_dates are removed, together with their stop_times,
// and long names are resolved for routes with at least one remaining trip.
func (a *Assembler) Finalize(ctx context.Context, namer RouteNamer, stops []Stop, cfg *config.Config) (f *Feed, stats FinalizeStats, err error) {
	activeServices := make(set.Set[string])
	for _, d := range a.calendarDates {
		activeServices.Add(d.ServiceID)
	}

	trips := make([]Trip, 0, len(a.trips))
	usedRoutes := make(set.Set[string])
	for _, t := range a.trips {
		if !activeServices.Has(t.ServiceID) {
			stats.DroppedTrips++
			stats.DroppedStopTimes += len(t.StopTimes)
			continue
		}
		trips = append(trips, t)
		usedRoutes.Add(t.RouteID)
	}

	routeIDs := slices.SortedFunc(usedRoutes.All(), routes.CompareIDs)
	routeList := make([]Route, len(routeIDs))
	for i, id := range routeIDs {
		var longName string
		longName, err = namer.LongName(ctx, id)
		if err != nil {
			return nil, stats, fmt.Errorf("route %s: %w", id, err)
		}

		routeList[i] = Route{
			AgencyID:  cfg.Agency.ID,
			ID:        id,
			ShortName: id,
			LongName:  longName,
			Type:      cfg.RouteStyle.Type,
			Color:     cfg.RouteStyle.Color,
			TextColor: cfg.RouteStyle.TextColor,
		}
	}

	f = &Feed{
		Agency:         cfg.Agency,
		Stops:          stops,
		Routes:         routeList,
		Trips:          trips,
		CalendarDates:  a.calendarDates,
		FareAttributes: cfg.Fares,
	}

	if cfg.Publisher.IsSet() {
		f.FeedInfo = &FeedInfo{
			PublisherName: cfg.Publisher.Name,
			PublisherURL:  cfg.Publisher.URL,
			Lang:          cfg.Publisher.Lang,
			Version:       strings.Join(a.versions, "/"),
		}
	}

	stats.Routes = len(f.Routes)
	stats.Trips = len(f.Trips)
	stats.StopTimes = f.TotalStopTimes()
	stats.CalendarDates = len(f.CalendarDates)
	return
}
