// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

// DayType is the closed vocabulary of service buckets.
type DayType uint8

const (
	Weekday DayType = iota
	Saturday
	Sunday
)

var AllDayTypes = [...]DayType{Weekday, Saturday, Sunday}

type ErrUnknownDayType string

func (e ErrUnknownDayType) Error() string {
	return fmt.Sprintf("unknown day type: %q", string(e))
}

func (d DayType) String() string {
	switch d {
	case Weekday:
		return "WEEKDAY"
	case Saturday:
		return "SATURDAY"
	case Sunday:
		return "SUNDAY"
	default:
		return fmt.Sprintf("DayType(%d)", uint8(d))
	}
}

// ParseDayType normalizes a day type name (trimmed and upper-cased) and maps it onto
// the vocabulary. The Polish names used by MZDiK are accepted as well.
func ParseDayType(name string) (DayType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "WEEKDAY", "POWSZEDNI":
		return Weekday, nil
	case "SATURDAY", "SOBOTA":
		return Saturday, nil
	case "SUNDAY", "NIEDZIELA":
		return Sunday, nil
	default:
		return 0, ErrUnknownDayType(name)
	}
}

// Classify returns the day type operating on the given date.
func Classify(date time2.Date, holidays Holidays) DayType {
	switch {
	case date.Weekday() == time.Sunday || holidays.IsHoliday(date):
		return Sunday
	case date.Weekday() == time.Saturday:
		return Saturday
	default:
		return Weekday
	}
}

// ServiceID returns the namespaced identifier of a service bucket.
func ServiceID(prefix string, d DayType) string {
	return prefix + d.String()
}
