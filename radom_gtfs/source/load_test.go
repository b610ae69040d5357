// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFS() fstest.MapFS {
	return fstest.MapFS{
		"lines.csv":       {Data: []byte("id,route_code\n1,5\n2, 12 \n")},
		"patterns.csv":    {Data: []byte("id,line_id\n10,1\n20,2\n")},
		"day_types.csv":   {Data: []byte("id,name\n1,Powszedni\n")},
		"trips.csv":       {Data: []byte("id,pattern_id,day_type_id,start_time,crew_id\n100,10,1,485,7\n")},
		"stop_events.csv": {Data: []byte("trip_id,time,stop_id,sequence\n100,485,1,1\n100,490,2,2\n")},
		"stakes.csv":      {Data: []byte("id,code,name\n1,01,Dworzec\n")},
	}
}

func TestLoadDir(t *testing.T) {
	tables, err := Load(context.Background(), Dir{validFS()})
	require.NoError(t, err)

	assert.Equal(t, []Line{{1, "5"}, {2, "12"}}, tables.Lines)
	assert.Equal(t, []Pattern{{10, 1}, {20, 2}}, tables.Patterns)
	assert.Equal(t, []DayType{{1, "Powszedni"}}, tables.DayTypes)
	assert.Equal(t, []Trip{{100, 10, 1, time2.Time(485), "7"}}, tables.Trips)
	assert.Equal(t, []StopEvent{{100, 485, 1, 1}, {100, 490, 2, 2}}, tables.StopEvents)
	assert.Equal(t, []Stake{{1, "01", "Dworzec"}}, tables.Stakes)
}

func TestLoadDirWithoutStakes(t *testing.T) {
	fs := validFS()
	delete(fs, "stakes.csv")

	tables, err := Load(context.Background(), Dir{fs})
	require.NoError(t, err)
	assert.Empty(t, tables.Stakes)
	assert.Len(t, tables.Trips, 1)
}

func TestLoadDirMissingRelation(t *testing.T) {
	fs := validFS()
	delete(fs, "trips.csv")

	_, err := Load(context.Background(), Dir{fs})
	assert.ErrorContains(t, err, "trips")
}

func TestLoadDirInvalidValue(t *testing.T) {
	fs := validFS()
	fs["stop_events.csv"] = &fstest.MapFile{Data: []byte("trip_id,time,stop_id,sequence\n100,485,1,1\n100,490,x,2\n")}

	_, err := Load(context.Background(), Dir{fs})
	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "stop_events", invalid.Table)
	assert.Equal(t, "stop_id", invalid.Column)
	assert.Equal(t, 3, invalid.Line)
}

func TestLoadDirMissingColumn(t *testing.T) {
	fs := validFS()
	fs["patterns.csv"] = &fstest.MapFile{Data: []byte("id\n10\n")}

	_, err := Load(context.Background(), Dir{fs})
	assert.ErrorIs(t, err, mcsv.ErrMissingColumn("line_id"))
}

func TestLoadMDB(t *testing.T) {
	// Fake mdb-export, printing a minimal table for every request
	dir := t.TempDir()
	tool := filepath.Join(dir, "mdb-export")
	script := `#!/bin/sh
test "$MDB_JET3_CHARSET" = "CP1250" || exit 2
case "$2" in
tLines) printf 'ID,nNumber\n1,5\n' ;;
tDirs) printf 'ID,nLine\n10,1\n' ;;
tDayTypes) printf 'ID,nName\n1,SOBOTA\n' ;;
tDepts) printf 'ID,nDir,nDayType,nTime,nTeam\n100,10,1,600,\n' ;;
tPassages) printf 'nDept,nTime,nStake,nOrder\n100,600,1,1\n' ;;
tStakes) printf 'ID,nSymbol,nName\n1,01,Dworzec\n' ;;
*) echo "no such table" >&2; exit 1 ;;
esac
`
	require.NoError(t, os.WriteFile(tool, []byte(script), 0o755))

	tables, err := Load(context.Background(), MDB{Path: "test.mdb", Tool: tool})
	require.NoError(t, err)
	assert.Equal(t, []DayType{{1, "SOBOTA"}}, tables.DayTypes)
	assert.Equal(t, []Trip{{100, 10, 1, time2.Time(600), ""}}, tables.Trips)
}

func TestMDBError(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "mdb-export")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho 'broken file' >&2\nexit 1\n"), 0o755))

	_, err := MDB{Path: "test.mdb", Tool: tool}.Open(context.Background(), Lines)
	assert.ErrorContains(t, err, "broken file")
	assert.ErrorContains(t, err, "tLines")
}
