// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package calendar

import (
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/set"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

// Generate expands a snapshot's window into calendar_dates rows.
// Exactly one day type operates on each date, and a row is only emitted
// if that day type is used by the snapshot.
func Generate(prefix string, start, end time2.Date, used set.Set[DayType], holidays Holidays) (dates []feed.CalendarDate) {
	for date := range time2.Range(start, end) {
		dayType := Classify(date, holidays)
		if used.Has(dayType) {
			dates = append(dates, feed.CalendarDate{
				ServiceID:     ServiceID(prefix, dayType),
				Date:          date,
				ExceptionType: feed.ExceptionAdded,
			})
		}
	}
	return
}
