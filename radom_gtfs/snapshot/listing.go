// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/http2"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
	"github.com/PuerkitoBio/goquery"
)

var (
	archiveHrefRegex = regexp.MustCompile(`/upload/file/Rozklady.+\.zip`)
	versionRegex     = regexp.MustCompile(`[0-9-]+`)
)

var ErrNoArchives = errors.New("no schedule archives found on the website")

type ErrInvalidVersion string

func (e ErrInvalidVersion) Error() string {
	return fmt.Sprintf("unable to extract schedule version from %q", string(e))
}

// List finds all schedule archives on the MZDiK website.
// The returned snapshots don't have their end dates set.
func List(ctx context.Context, client *http.Client, pageURL string) ([]Snapshot, error) {
	doc, err := http2.GetDocument(ctx, client, pageURL, nil)
	if err != nil {
		return nil, err
	}
	return ParseListing(doc)
}

// ParseListing extracts schedule archives from the MZDiK website.
// doc.Url is used to resolve relative links.
func ParseListing(doc *goquery.Document) (snapshots []Snapshot, err error) {
	base := doc.Url
	if base == nil {
		base = &url.URL{}
	}
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if !archiveHrefRegex.MatchString(href) {
			return true
		}

		var s Snapshot
		s, err = parseArchiveLink(base, href)
		if err != nil {
			return false
		}

		if !seen[s.Version] {
			seen[s.Version] = true
			snapshots = append(snapshots, s)
		}
		return true
	})

	if err != nil {
		return nil, err
	} else if len(snapshots) == 0 {
		return nil, ErrNoArchives
	}
	return
}

func parseArchiveLink(base *url.URL, href string) (s Snapshot, err error) {
	link, err := base.Parse(href)
	if err != nil {
		return s, fmt.Errorf("%q: %w", href, err)
	}
	s.URL = link.String()

	s.Version = strings.TrimLeft(versionRegex.FindString(href), "-")
	if s.Version == "" {
		return s, ErrInvalidVersion(href)
	}

	s.Start, err = time2.ParseDate(s.Version)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidVersion(href), err)
	}
	return
}
