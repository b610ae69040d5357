// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package feed

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/config"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapNamer map[string]string

func (n mapNamer) LongName(_ context.Context, routeID string) (string, error) {
	name, ok := n[routeID]
	if !ok {
		return "", errors.New("route not expected to be resolved: " + routeID)
	}
	return name, nil
}

func testTrip(version, route, service, id string, stops ...int) Trip {
	t := Trip{
		RouteID:   route,
		ServiceID: version + ":" + service,
		ID:        version + ":" + id,
		Headsign:  "Dworzec",
	}
	for i, s := range stops {
		tm := time2.Time(480 + i)
		t.StopTimes = append(t.StopTimes, StopTime{ArrivalTime: tm, DepartureTime: tm, StopID: s, Sequence: i})
	}
	return t
}

func newTestAssembler() *Assembler {
	a := NewAssembler()
	a.Add(
		"2024-01-01",
		[]Trip{
			testTrip("2024-01-01", "12", "WEEKDAY", "12-WEEKDAY-3-0800", 1, 2),
			testTrip("2024-01-01", "N1", "SUNDAY", "N1-SUNDAY-4-0800", 2, 1),
		},
		[]CalendarDate{{"2024-01-01:WEEKDAY", time2.Date{Y: 2024, M: 1, D: 2}, ExceptionAdded}},
	)
	a.Add(
		"2024-06-01",
		[]Trip{
			testTrip("2024-06-01", "5", "WEEKDAY", "5-WEEKDAY-1-0800", 1, 2, 3),
			testTrip("2024-06-01", "12", "WEEKDAY", "12-WEEKDAY-3-0800", 1, 2),
		},
		[]CalendarDate{{"2024-06-01:WEEKDAY", time2.Date{Y: 2024, M: 6, D: 3}, ExceptionAdded}},
	)
	return a
}

var testStops = []Stop{
	{ID: 1, Name: "Dworzec", Lat: 51.3953, Lon: 21.1566},
	{ID: 2, Name: "Plac Jagielloński", Lat: 51.4027, Lon: 21.1471},
	{ID: 3, Name: "Gołębiów", Lat: 51.43, Lon: 21.18},
}

func newTestFeed(t *testing.T, publisher bool) *Feed {
	cfg := config.Default()
	if publisher {
		cfg.Publisher.Name = "Foo"
		cfg.Publisher.URL = "https://example.com/"
	}

	f, _, err := newTestAssembler().Finalize(
		context.Background(),
		mapNamer{"5": "Dworzec — Gołębiów", "12": "Dworzec — Dworzec"},
		testStops,
		cfg,
	)
	require.NoError(t, err)
	return f
}

func TestFinalize(t *testing.T) {
	f, stats, err := newTestAssembler().Finalize(
		context.Background(),
		mapNamer{"5": "Dworzec — Gołębiów", "12": "Dworzec — Dworzec"},
		testStops,
		config.Default(),
	)
	require.NoError(t, err)

	assert.Equal(t, FinalizeStats{
		DroppedTrips:     1,
		DroppedStopTimes: 2,
		Routes:           2,
		Trips:            3,
		StopTimes:        7,
		CalendarDates:    2,
	}, stats)

	var tripIDs []string
	for _, trip := range f.Trips {
		tripIDs = append(tripIDs, trip.ID)
	}
	assert.Equal(t, []string{
		"2024-01-01:12-WEEKDAY-3-0800",
		"2024-06-01:5-WEEKDAY-1-0800",
		"2024-06-01:12-WEEKDAY-3-0800",
	}, tripIDs)

	assert.Equal(t, []Route{
		{"0", "5", "5", "Dworzec — Gołębiów", 3, "E31E24", "FFFFFF"},
		{"0", "12", "12", "Dworzec — Dworzec", 3, "E31E24", "FFFFFF"},
	}, f.Routes)

	assert.Nil(t, f.FeedInfo)
	assert.Len(t, f.FareAttributes, 3)
}

func TestFinalizeInvariants(t *testing.T) {
	f := newTestFeed(t, false)

	stopIDs := make(map[int]bool)
	for _, s := range f.Stops {
		stopIDs[s.ID] = true
	}

	services := make(map[string]bool)
	for _, d := range f.CalendarDates {
		services[d.ServiceID] = true
	}

	tripIDs := make(map[string]bool)
	for _, trip := range f.Trips {
		assert.False(t, tripIDs[trip.ID], "duplicate trip_id %s", trip.ID)
		tripIDs[trip.ID] = true
		assert.True(t, services[trip.ServiceID], "trip %s has no calendar", trip.ID)
		for _, st := range trip.StopTimes {
			assert.True(t, stopIDs[st.StopID], "trip %s references unknown stop %d", trip.ID, st.StopID)
		}
	}
}

func TestFinalizeNamerError(t *testing.T) {
	_, _, err := newTestAssembler().Finalize(context.Background(), mapNamer{"5": "x"}, testStops, config.Default())
	assert.ErrorContains(t, err, "route 12")
}

func TestFinalizeFeedInfo(t *testing.T) {
	f := newTestFeed(t, true)
	require.NotNil(t, f.FeedInfo)
	assert.Equal(t, FeedInfo{"Foo", "https://example.com/", "pl", "2024-01-01/2024-06-01"}, *f.FeedInfo)
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, newTestFeed(t, false).WriteDir(dir))

	read := func(name string) string {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(content)
	}

	assert.Equal(
		t,
		"agency_id,agency_name,agency_url,agency_timezone,agency_lang\n"+
			"0,MZDiK Radom,http://www.mzdik.radom.pl/,Europe/Warsaw,pl\n",
		read("agency.txt"),
	)
	assert.Equal(
		t,
		"stop_id,stop_name,stop_lat,stop_lon\n"+
			"1,Dworzec,51.3953,21.1566\n"+
			"2,Plac Jagielloński,51.4027,21.1471\n"+
			"3,Gołębiów,51.43,21.18\n",
		read("stops.txt"),
	)
	assert.Equal(
		t,
		"route_id,service_id,trip_id,trip_headsign,team_id\n"+
			"12,2024-01-01:WEEKDAY,2024-01-01:12-WEEKDAY-3-0800,Dworzec,\n"+
			"5,2024-06-01:WEEKDAY,2024-06-01:5-WEEKDAY-1-0800,Dworzec,\n"+
			"12,2024-06-01:WEEKDAY,2024-06-01:12-WEEKDAY-3-0800,Dworzec,\n",
		read("trips.txt"),
	)
	assert.Contains(t, read("stop_times.txt"), "2024-06-01:5-WEEKDAY-1-0800,08:02:00,08:02:00,3,2\n")
	assert.Equal(
		t,
		"service_id,date,exception_type\n"+
			"2024-01-01:WEEKDAY,20240102,1\n"+
			"2024-06-01:WEEKDAY,20240603,1\n",
		read("calendar_dates.txt"),
	)
	assert.Equal(
		t,
		"fare_id,price,currency_type,payment_method,transfers,transfer_duration\n"+
			"jednogodzinny,3.00,PLN,0,,3600\n"+
			"dobowy,10.00,PLN,0,,86400\n"+
			"jednorazowy_u_kierowcy,4.00,PLN,0,0,\n",
		read("fare_attributes.txt"),
	)
	assert.NoFileExists(t, filepath.Join(dir, "feed_info.txt"))
}

func TestWriteZipReproducible(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.zip")
	second := filepath.Join(dir, "second.zip")

	require.NoError(t, newTestFeed(t, true).WriteZip(first))
	require.NoError(t, newTestFeed(t, true).WriteZip(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	arch, err := zip.OpenReader(first)
	require.NoError(t, err)
	defer arch.Close()

	var names []string
	for _, f := range arch.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, newTestFeed(t, true).FileNames(), names)
	assert.Contains(t, names, "feed_info.txt")

	f, err := arch.Open("feed_info.txt")
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(
		t,
		"feed_publisher_name,feed_publisher_url,feed_lang,feed_version\n"+
			"Foo,https://example.com/,pl,2024-01-01/2024-06-01\n",
		string(content),
	)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radom.db")
	f := newTestFeed(t, true)
	require.NoError(t, f.WriteSQLite(context.Background(), path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	count := func(table string) (n int) {
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		return
	}
	assert.Equal(t, 3, count("stops"))
	assert.Equal(t, 2, count("routes"))
	assert.Equal(t, 3, count("trips"))
	assert.Equal(t, 7, count("stop_times"))
	assert.Equal(t, 2, count("calendar_dates"))
	assert.Equal(t, 3, count("fare_attributes"))
	assert.Equal(t, 1, count("feed_info"))

	var transfers sql.NullInt64
	require.NoError(t, db.QueryRow("SELECT transfers FROM fare_attributes WHERE fare_id = 'dobowy'").Scan(&transfers))
	assert.False(t, transfers.Valid)

	var firstRoute string
	require.NoError(t, db.QueryRow("SELECT route_id FROM routes ORDER BY sort_order LIMIT 1").Scan(&firstRoute))
	assert.Equal(t, "5", firstRoute)
}

func TestWriteSQLiteDanglingStop(t *testing.T) {
	f := newTestFeed(t, false)
	f.Stops = f.Stops[:2]

	path := filepath.Join(t.TempDir(), "radom.db")
	assert.Error(t, f.WriteSQLite(context.Background(), path))
	assert.NoFileExists(t, path)
}
