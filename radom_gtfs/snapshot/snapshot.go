// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package snapshot

import (
	"cmp"
	"errors"
	"slices"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

const DefaultScheduleLengthDays = 365

var ErrNoSnapshots = errors.New("no schedule snapshots available")

// Snapshot is a single versioned schedule database, valid from Start to End (inclusive).
type Snapshot struct {
	Version string
	URL     string
	Path    string
	Start   time2.Date
	End     time2.Date
}

type ChainOptions struct {
	// Today is the first date which must be covered by a snapshot.
	Today time2.Date

	// LengthDays is the validity of the last snapshot, if LastEnd is not provided.
	// Defaults to DefaultScheduleLengthDays.
	LengthDays int

	// LastEnd overrides the end date of the last snapshot.
	LastEnd time2.Date
}

// Chain orders snapshots by their start dates (ties are broken by version), sets their end dates
// so that the validity windows are contiguous and don't overlap, and drops snapshots
// which are no longer valid on opt.Today.
//
// Snapshots with equal start dates get an empty window, except for the last of them.
func Chain(snapshots []Snapshot, opt ChainOptions) ([]Snapshot, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}

	chained := slices.SortedFunc(slices.Values(snapshots), func(a, b Snapshot) int {
		return cmp.Or(a.Start.Compare(b.Start), cmp.Compare(a.Version, b.Version))
	})

	for i := range len(chained) - 1 {
		chained[i].End = chained[i+1].Start.Previous()
	}

	last := &chained[len(chained)-1]
	if !opt.LastEnd.IsZero() {
		last.End = opt.LastEnd
	} else {
		length := opt.LengthDays
		if length <= 0 {
			length = DefaultScheduleLengthDays
		}
		last.End = last.Start.Shifted(length)
	}

	return slices.DeleteFunc(chained, func(s Snapshot) bool { return s.End.Before(opt.Today) }), nil
}
