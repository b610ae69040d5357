// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package feed

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
)

type table struct {
	name   string
	header []string
	rows   func(f *Feed, write func(values ...string) error) error
}

var tables = [...]table{
	{
		name:   "agency.txt",
		header: []string{"agency_id", "agency_name", "agency_url", "agency_timezone", "agency_lang"},
		rows: func(f *Feed, write func(...string) error) error {
			a := f.Agency
			return write(a.ID, a.Name, a.URL, a.Timezone, a.Lang)
		},
	},
	{
		name:   "stops.txt",
		header: []string{"stop_id", "stop_name", "stop_lat", "stop_lon"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, s := range f.Stops {
				if err := write(strconv.Itoa(s.ID), s.Name, formatFloat(s.Lat), formatFloat(s.Lon)); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		name: "routes.txt",
		header: []string{"agency_id", "route_id", "route_short_name", "route_long_name", "route_type",
			"route_color", "route_text_color"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, r := range f.Routes {
				err := write(r.AgencyID, r.ID, r.ShortName, r.LongName, strconv.Itoa(r.Type), r.Color, r.TextColor)
				if err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		name:   "trips.txt",
		header: []string{"route_id", "service_id", "trip_id", "trip_headsign", "team_id"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, t := range f.Trips {
				if err := write(t.RouteID, t.ServiceID, t.ID, t.Headsign, t.CrewID); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		name:   "stop_times.txt",
		header: []string{"trip_id", "arrival_time", "departure_time", "stop_id", "stop_sequence"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, t := range f.Trips {
				for _, st := range t.StopTimes {
					err := write(t.ID, st.ArrivalTime.String(), st.DepartureTime.String(), strconv.Itoa(st.StopID),
						strconv.Itoa(st.Sequence))
					if err != nil {
						return err
					}
				}
			}
			return nil
		},
	},
	{
		name:   "calendar_dates.txt",
		header: []string{"service_id", "date", "exception_type"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, d := range f.CalendarDates {
				if err := write(d.ServiceID, d.Date.GTFS(), strconv.Itoa(d.ExceptionType)); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		name:   "fare_attributes.txt",
		header: []string{"fare_id", "price", "currency_type", "payment_method", "transfers", "transfer_duration"},
		rows: func(f *Feed, write func(...string) error) error {
			for _, a := range f.FareAttributes {
				err := write(a.ID, a.Price, a.Currency, strconv.Itoa(a.PaymentMethod), formatOptional(a.Transfers),
					formatOptional(a.TransferDuration))
				if err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		name:   "feed_info.txt",
		header: []string{"feed_publisher_name", "feed_publisher_url", "feed_lang", "feed_version"},
		rows: func(f *Feed, write func(...string) error) error {
			i := f.FeedInfo
			return write(i.PublisherName, i.PublisherURL, i.Lang, i.Version)
		},
	},
}

func (t *table) present(f *Feed) bool {
	return t.name != "feed_info.txt" || f.FeedInfo != nil
}

func (t *table) dump(f *Feed, w io.Writer) error {
	c, err := mcsv.NewWriter(w, t.header...)
	if err != nil {
		return err
	}
	if err = t.rows(f, c.Write); err != nil {
		return err
	}
	return c.Flush()
}

// FileNames returns the names of all files which will be written for this feed.
func (f *Feed) FileNames() (names []string) {
	for i := range tables {
		if tables[i].present(f) {
			names = append(names, tables[i].name)
		}
	}
	return
}

// WriteDir writes the feed as a set of GTFS text files into the provided directory.
func (f *Feed) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i := range tables {
		t := &tables[i]
		if !t.present(f) {
			continue
		}

		if err := dumpFile(filepath.Join(dir, t.name), func(w io.Writer) error { return t.dump(f, w) }); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return nil
}

// WriteZip writes the feed as a GTFS archive. Output is byte-for-byte reproducible:
// files always come in the same order and carry no modification times.
func (f *Feed) WriteZip(path string) error {
	return dumpFile(path, f.writeZip)
}

func (f *Feed) writeZip(w io.Writer) error {
	arch := zip.NewWriter(w)
	for i := range tables {
		t := &tables[i]
		if !t.present(f) {
			continue
		}

		entry, err := arch.CreateHeader(&zip.FileHeader{Name: t.name, Method: zip.Deflate})
		if err != nil {
			return err
		}

		if err = t.dump(f, entry); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return arch.Close()
}

// dumpFile writes to a temporary file, which replaces path only after a successful write.
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

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
