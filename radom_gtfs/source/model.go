// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import "github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"

type Line struct {
	ID        int
	RouteCode string
}

// Pattern is a single variant (direction) of a line.
type Pattern struct {
	ID     int
	LineID int
}

type DayType struct {
	ID   int
	Name string
}

type Trip struct {
	ID        int
	PatternID int
	DayTypeID int
	StartTime time2.Time
	CrewID    string
}

type StopEvent struct {
	TripID   int
	Time     time2.Time
	StopID   int
	Sequence int
}

// Stake is a stop as described by a single database snapshot. Only used for diagnostics,
// as the stop registry is the authority on stop names and positions.
type Stake struct {
	ID   int
	Code string
	Name string
}

// Tables holds all relations of a single schedule snapshot.
type Tables struct {
	Lines      []Line
	Patterns   []Pattern
	DayTypes   []DayType
	Trips      []Trip
	StopEvents []StopEvent
	Stakes     []Stake
}
