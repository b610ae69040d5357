// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"strconv"
)

type ErrInvalidTime string

func (e ErrInvalidTime) Error() string {
	return fmt.Sprintf("invalid time: %q", string(e))
}

// Time is a schedule time, expressed in minutes since the service day's midnight.
// Values past 24:00 are allowed, as GTFS requires for trips running after midnight.
type Time int

func ParseMinutes(s string) (Time, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 0 {
		return 0, ErrInvalidTime(s)
	}
	return Time(m), nil
}

func (t Time) Hours() int   { return int(t) / 60 }
func (t Time) Minutes() int { return int(t) % 60 }

// HHMM returns the time as 4 zero-padded digits, without any separators.
func (t Time) HHMM() string {
	return fmt.Sprintf("%02d%02d", t.Hours(), t.Minutes())
}

// String formats the time in the GTFS HH:MM:SS format.
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hours(), t.Minutes())
}

func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
