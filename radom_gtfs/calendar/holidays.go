// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/http2"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
)

const ExceptionHoliday = "holiday"

// Holidays maps dates to their exception codes.
type Holidays map[time2.Date]string

func (h Holidays) IsHoliday(d time2.Date) bool {
	return h[d] == ExceptionHoliday
}

// ReadHolidays reads the exception list (date, regions, exception) and keeps only
// the rows tagged with the provided region. Regions are separated by dots.
func ReadHolidays(r io.Reader, region string) (Holidays, error) {
	h := make(Holidays)

	c := mcsv.NewReader(r)
	if err := c.Require("date", "regions", "exception"); err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}

	for row := range c.Iter() {
		if !slices.Contains(strings.Split(row["regions"], "."), region) {
			continue
		}

		date, err := time2.ParseDate(strings.TrimSpace(row["date"]))
		if err != nil {
			return nil, fmt.Errorf("holidays:%d: %w", c.Line(), err)
		}

		h[date] = strings.TrimSpace(row["exception"])
	}

	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}
	return h, nil
}

func FetchHolidays(ctx context.Context, client *http.Client, url, region string) (Holidays, error) {
	resp, err := http2.Get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ReadHolidays(resp.Body, region)
}
