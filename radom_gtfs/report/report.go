// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/feed"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/processor"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/stops"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

const (
	Compact       = false
	HumanReadable = true
)

// Report summarizes a single feed build.
type Report struct {
	Timestamp    time.Time           `json:"timestamp"`
	FeedVersion  string              `json:"feed_version"`
	Snapshots    []*Snapshot         `json:"snapshots"`
	Totals       feed.FinalizeStats  `json:"totals"`
	Stops        int                 `json:"stops"`
	MissingStops []stops.MissingStop `json:"missing_stops"`
}

type Snapshot struct {
	Version       string     `json:"version"`
	Start         time2.Date `json:"start_date"`
	End           time2.Date `json:"end_date"`
	CalendarDates int        `json:"calendar_dates"`
	Routes        []string   `json:"routes"`
	processor.Stats
}

// Warnings returns the number of degraded conditions encountered during the build.
func (r *Report) Warnings() (n int) {
	for _, s := range r.Snapshots {
		if len(s.MissingDayTypes) > 0 {
			n++
		}
	}
	return n + len(r.MissingStops)
}

func (r *Report) DumpJSON(w io.Writer, humanReadable bool) error {
	e := json.NewEncoder(w)
	if humanReadable {
		e.SetIndent("", "\t")
	}
	return e.Encode(r)
}

func (r *Report) DumpJSONFile(path string, humanReadable bool) error {
	return dumpFile(path, func(w io.Writer) error { return r.DumpJSON(w, humanReadable) })
}

// DumpMissingStops writes the used-but-unresolved stops as CSV (id, code, name).
func (r *Report) DumpMissingStops(w io.Writer) error {
	c, err := mcsv.NewWriter(w, "id", "code", "name")
	if err != nil {
		return err
	}

	for _, s := range r.MissingStops {
		if err = c.Write(strconv.Itoa(s.ID), s.Code, s.Name); err != nil {
			return err
		}
	}
	return c.Flush()
}

func (r *Report) DumpMissingStopsFile(path string) error {
	return dumpFile(path, r.DumpMissingStops)
}

func dumpFile(path string, dump func(io.Writer) error) error {
	tempPath := getTempOutputPath(path)

	err := func() error {
		f, err := os.Create(tempPath)
		if err != nil {
			return err
		}
		defer f.Close()

		b := bufio.NewWriter(f)
		if err = dump(b); err != nil {
			return err
		}

		if err = b.Flush(); err != nil {
			return err
		}
		return f.Close()
	}()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}

func getTempOutputPath(path string) string {
	dir, name := filepath.Split(path)
	return fmt.Sprintf("%s.%s.tmp", dir, name)
}
