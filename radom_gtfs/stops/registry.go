// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package stops

import (
	"fmt"
	"maps"
	"slices"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/set"
)

type Status uint8

const (
	StatusKnown Status = iota
	StatusInvalid
	StatusIgnored
)

func (s Status) String() string {
	switch s {
	case StatusKnown:
		return "known"
	case StatusInvalid:
		return "invalid"
	case StatusIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

type Record struct {
	ID   int
	Name string
	Lat  float64
	Lon  float64
}

// MissingStop is a stop referenced by a retained stop-time event,
// but absent from the stop source.
type MissingStop struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Registry is the single authority on stop identity. It's populated once per run
// and accumulates usage across all processed snapshots.
type Registry struct {
	known   map[int]Record
	ignored set.Set[int]
	used    set.Set[int]
	invalid map[int]MissingStop
}

// NewRegistry creates a registry from the stop source. Ignored stops are never loaded,
// even if present in records.
func NewRegistry(records []Record, ignored set.Set[int]) *Registry {
	r := &Registry{
		known:   make(map[int]Record, len(records)),
		ignored: ignored,
		used:    make(set.Set[int]),
		invalid: make(map[int]MissingStop),
	}
	if r.ignored == nil {
		r.ignored = make(set.Set[int])
	}

	for _, record := range records {
		if !r.ignored.Has(record.ID) {
			r.known[record.ID] = record
		}
	}
	return r
}

func (r *Registry) Len() int {
	return len(r.known)
}

func (r *Registry) IsIgnored(id int) bool {
	return r.ignored.Has(id)
}

func (r *Registry) Resolve(id int) Status {
	if r.ignored.Has(id) {
		return StatusIgnored
	} else if _, ok := r.known[id]; ok {
		return StatusKnown
	}
	return StatusInvalid
}

// Name returns the name of a known stop, or an empty string.
func (r *Registry) Name(id int) string {
	return r.known[id].Name
}

// MarkUsed flags a known stop for export. Idempotent.
func (r *Registry) MarkUsed(id int) {
	if _, ok := r.known[id]; ok {
		r.used.Add(id)
	}
}

// RecordInvalidReference remembers that an unresolved stop was referenced.
// The code and name come from the referencing snapshot, and are only informative;
// the first non-empty description of a stop wins.
func (r *Registry) RecordInvalidReference(id int, code, name string) {
	existing, ok := r.invalid[id]
	if !ok || (existing.Code == "" && existing.Name == "") {
		r.invalid[id] = MissingStop{ID: id, Code: code, Name: name}
	}
}

// Export returns all used known stops, and all referenced unresolved stops,
// both sorted by id.
func (r *Registry) Export() (stops []feed.Stop, missing []MissingStop) {
	stops = make([]feed.Stop, 0, len(r.used))
	for _, id := range set.Sorted(r.used) {
		record := r.known[id]
		stops = append(stops, feed.Stop{ID: id, Name: record.Name, Lat: record.Lat, Lon: record.Lon})
	}

	missing = make([]MissingStop, 0, len(r.invalid))
	for _, id := range slices.Sorted(maps.Keys(r.invalid)) {
		missing = append(missing, r.invalid[id])
	}
	return
}
