// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package routes

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/http2"
	"github.com/PuerkitoBio/goquery"
	"github.com/bluele/gcache"
	"golang.org/x/text/encoding/charmap"
)

// LongNameSeparator joins the names of both route directions.
const LongNameSeparator = " — "

// Namer resolves long names of routes.
type Namer interface {
	LongName(ctx context.Context, routeID string) (string, error)
}

type NopNamer struct{}

func (NopNamer) LongName(context.Context, string) (string, error) {
	return "", nil
}

// WebsiteNamer scrapes route long names from the timetable pages on the MZDiK website.
type WebsiteNamer struct {
	BaseURL string
	Client  *http.Client
}

func (n WebsiteNamer) LongName(ctx context.Context, routeID string) (string, error) {
	url := fmt.Sprintf("%s/%s/w.htm", strings.TrimSuffix(n.BaseURL, "/"), PageCode(routeID))
	slog.Debug("Fetching route name", "route_id", routeID, "url", url)

	doc, err := http2.GetDocument(ctx, n.Client, url, charmap.ISO8859_2)
	if err != nil {
		return "", err
	}
	return ParseLongName(doc), nil
}

// ParseLongName extracts names of the first two directions from a timetable page.
// Pages with a single direction describe loop routes, and the direction is repeated.
func ParseLongName(doc *goquery.Document) string {
	var directions []string
	doc.Find(`td[colspan="3"]`).EachWithBreak(func(_ int, td *goquery.Selection) bool {
		b := td.Find("b")
		if b.Length() == 0 {
			return true
		}
		directions = append(directions, strings.TrimSpace(b.First().Text()))
		return len(directions) < 2
	})

	if len(directions) == 1 {
		directions = append(directions, directions[0])
	}
	return strings.Join(directions, LongNameSeparator)
}

// CachedNamer memoizes successfully resolved names of the wrapped Namer.
// Routes with equal keys share a single entry.
type CachedNamer struct {
	Wrapped Namer

	// Key maps a route id onto its cache key. NewCachedNamer uses PageCode;
	// when nil, route ids are used directly.
	Key func(routeID string) string

	cache gcache.Cache
}

func NewCachedNamer(wrapped Namer, size int) *CachedNamer {
	return &CachedNamer{
		Wrapped: wrapped,
		Key:     PageCode,
		cache:   gcache.New(size).LRU().Build(),
	}
}

func (n *CachedNamer) LongName(ctx context.Context, routeID string) (string, error) {
	key := routeID
	if n.Key != nil {
		key = n.Key(routeID)
	}

	if cached, err := n.cache.Get(key); err == nil {
		if name, ok := cached.(string); ok {
			return name, nil
		}
	}

	name, err := n.Wrapped.LongName(ctx, routeID)
	if err != nil {
		return "", err
	}

	if err := n.cache.Set(key, name); err != nil {
		return "", err
	}
	return name, nil
}

// CompareIDs orders route ids as if they were left-padded with zeros to 4 characters,
// so that numeric codes sort numerically.
func CompareIDs(a, b string) int {
	return cmp.Or(cmp.Compare(padCode(a), padCode(b)), cmp.Compare(a, b))
}

// PageCode returns the code of the route's timetable page. Route ids differing only
// in leading zeros or letter case share a page.
func PageCode(routeID string) string {
	return strings.ToLower(padCode(routeID))
}

func padCode(code string) string {
	if len(code) >= 4 {
		return code
	}
	return strings.Repeat("0", 4-len(code)) + code
}
