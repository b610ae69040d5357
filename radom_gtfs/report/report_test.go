// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/processor"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/stops"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *Report {
	return &Report{
		Timestamp:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		FeedVersion: "2024-06-01",
		Snapshots: []*Snapshot{
			{
				Version: "2024-06-01",
				Start:   time2.Date{Y: 2024, M: 6, D: 1},
				End:     time2.Date{Y: 2025, M: 6, D: 1},
				Stats:   processor.Stats{RawTrips: 10, Trips: 9, ShortTrips: 1, MissingDayTypes: []string{"SUNDAY"}},
			},
		},
		MissingStops: []stops.MissingStop{{ID: 77, Code: "77", Name: "Nowa, Osiedle"}},
	}
}

func TestDumpJSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, testReport().DumpJSON(&b, Compact))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	assert.Equal(t, "2024-06-01", decoded["feed_version"])

	snapshot := decoded["snapshots"].([]any)[0].(map[string]any)
	assert.Equal(t, "2025-06-01", snapshot["end_date"])
	assert.Equal(t, float64(9), snapshot["trips"])
	assert.Equal(t, []any{"SUNDAY"}, snapshot["missing_day_types"])
}

func TestWarnings(t *testing.T) {
	assert.Equal(t, 2, testReport().Warnings())
}

func TestDumpFiles(t *testing.T) {
	dir := t.TempDir()
	r := testReport()

	require.NoError(t, r.DumpJSONFile(filepath.Join(dir, "report.json"), HumanReadable))
	require.NoError(t, r.DumpMissingStopsFile(filepath.Join(dir, "missing_stops.csv")))

	content, err := os.ReadFile(filepath.Join(dir, "missing_stops.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,code,name\n77,77,\"Nowa, Osiedle\"\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n\t\"feed_version\": \"2024-06-01\"")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDumpFileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	failure := errors.New("disk full")
	err := dumpFile(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
