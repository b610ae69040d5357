// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package feed

import (
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

// ExceptionAdded is the only calendar_dates.txt exception_type ever generated.
const ExceptionAdded = 1

type Stop struct {
	ID   int
	Name string
	Lat  float64
	Lon  float64
}

type Route struct {
	AgencyID  string
	ID        string
	ShortName string
	LongName  string
	Type      int
	Color     string
	TextColor string
}

type Trip struct {
	RouteID   string
	ServiceID string
	ID        string
	Headsign  string
	CrewID    string
	StopTimes []StopTime
}

// StopTime is owned by its Trip, which carries the trip_id.
type StopTime struct {
	ArrivalTime   time2.Time
	DepartureTime time2.Time
	StopID        int
	Sequence      int
}

type CalendarDate struct {
	ServiceID     string
	Date          time2.Date
	ExceptionType int
}

type FeedInfo struct {
	PublisherName string
	PublisherURL  string
	Lang          string
	Version       string
}

// Feed is a complete, consistent GTFS Schedule dataset.
type Feed struct {
	Agency         config.Agency
	Stops          []Stop
	Routes         []Route
	Trips          []Trip
	CalendarDates  []CalendarDate
	FareAttributes []config.Fare
	FeedInfo       *FeedInfo
}

// IDPrefix returns the prefix applied to all trip and service identifiers
// coming from a snapshot with the given version.
func IDPrefix(version string) string {
	return version + ":"
}

func (f *Feed) TotalStopTimes() (n int) {
	for _, t := range f.Trips {
		n += len(t.StopTimes)
	}
	return
}
