package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestCSVRoundTrip(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	table := &Table{
		Name:    "events",
		Columns: []string{"event_id", "user_id", "event_type"},
		Rows: [][]string{
			{"1", "user-00001", "Login"},
			{"2", "user-00002", `View "Product"`},
		},
	}

	err := NewCSVWriter(dir, "out.c-amplitude.events").Write(context.Background(), table)
	is.NoErr(err)

	read, err := NewCSVReader(filepath.Join(dir, "events.csv")).Read(context.Background())
	is.NoErr(err)

	is.Equal(read.Name, "events")
	is.Equal(read.Columns, table.Columns)
	is.Equal(read.Rows, table.Rows) // quoting should survive the round trip
}

func TestThatAManifestIsWrittenNextToTheTable(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	table := &Table{
		Name:    "events",
		Columns: []string{"event_id", "user_id"},
		Rows:    [][]string{{"1", "user-00001"}},
	}

	err := NewCSVWriter(dir, "out.c-amplitude.events").Write(context.Background(), table)
	is.NoErr(err)

	body, err := os.ReadFile(filepath.Join(dir, "events.csv.manifest"))
	is.NoErr(err)

	m := manifest{}
	is.NoErr(json.Unmarshal(body, &m))

	is.Equal(m.Destination, "out.c-amplitude.events")
	is.Equal(m.Columns, table.Columns)
	is.Equal(m.Incremental, false)
	is.Equal(m.Delimiter, ",")
}

func TestThatReadingAMissingFileFails(t *testing.T) {
	is := is.New(t)

	_, err := NewCSVReader(filepath.Join(t.TempDir(), "nope.csv")).Read(context.Background())

	is.True(err != nil) // should have returned an error
}

func TestThatReadingAnEmptyFileFails(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "empty.csv")
	is.NoErr(os.WriteFile(path, []byte{}, 0o644))

	_, err := NewCSVReader(path).Read(context.Background())

	is.True(err != nil) // a table needs at least a header row
}
