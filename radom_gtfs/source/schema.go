// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"maps"
	"slices"
)

type Relation string

const (
	Lines      Relation = "lines"
	Patterns   Relation = "patterns"
	DayTypes   Relation = "day_types"
	Trips      Relation = "trips"
	StopEvents Relation = "stop_events"
	Stakes     Relation = "stakes"
)

// Table describes where a relation is physically stored. Columns maps
// logical column names to their names in the physical table.
type Table struct {
	Name    string
	Columns map[string]string
}

func (t Table) Column(logical string) string {
	if physical, ok := t.Columns[logical]; ok {
		return physical
	}
	return logical
}

func (t Table) PhysicalColumns() []string {
	return slices.Sorted(maps.Values(t.Columns))
}

type Schema map[Relation]Table

// LogicalSchema stores every relation in a table named after it, with logical column names.
var LogicalSchema = Schema{
	Lines:      identityTable(Lines, "id", "route_code"),
	Patterns:   identityTable(Patterns, "id", "line_id"),
	DayTypes:   identityTable(DayTypes, "id", "name"),
	Trips:      identityTable(Trips, "id", "pattern_id", "day_type_id", "start_time", "crew_id"),
	StopEvents: identityTable(StopEvents, "trip_id", "time", "stop_id", "sequence"),
	Stakes:     identityTable(Stakes, "id", "code", "name"),
}

// MZDiKSchema describes the tables of the MZDiK Radom schedule database.
var MZDiKSchema = Schema{
	Lines: {
		Name:    "tLines",
		Columns: map[string]string{"id": "ID", "route_code": "nNumber"},
	},
	Patterns: {
		Name:    "tDirs",
		Columns: map[string]string{"id": "ID", "line_id": "nLine"},
	},
	DayTypes: {
		Name:    "tDayTypes",
		Columns: map[string]string{"id": "ID", "name": "nName"},
	},
	Trips: {
		Name: "tDepts",
		Columns: map[string]string{
			"id":          "ID",
			"pattern_id":  "nDir",
			"day_type_id": "nDayType",
			"start_time":  "nTime",
			"crew_id":     "nTeam",
		},
	},
	StopEvents: {
		Name: "tPassages",
		Columns: map[string]string{
			"trip_id":  "nDept",
			"time":     "nTime",
			"stop_id":  "nStake",
			"sequence": "nOrder",
		},
	},
	Stakes: {
		Name:    "tStakes",
		Columns: map[string]string{"id": "ID", "code": "nSymbol", "name": "nName"},
	},
}

func identityTable(rel Relation, columns ...string) Table {
	t := Table{Name: string(rel), Columns: make(map[string]string, len(columns))}
	for _, c := range columns {
		t.Columns[c] = c
	}
	return t
}
