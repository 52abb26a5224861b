package storage

import (
	"testing"

	"github.com/matryer/is"
)

func TestThatTheDestinationTableIsCreatedWithTextColumns(t *testing.T) {
	is := is.New(t)

	table := &Table{
		Name:    "events",
		Columns: []string{"event_id", "user_id", "event_properties"},
	}

	is.Equal(createTableSQL(table),
		`CREATE TABLE IF NOT EXISTS "events" ("event_id" TEXT, "user_id" TEXT, "event_properties" TEXT);`)
}

func TestThatWritingTruncatesBeforeLoading(t *testing.T) {
	is := is.New(t)

	// a rerun replaces the previous rows instead of appending to them,
	// matching the csv writer which overwrites its output file
	is.Equal(truncateTableSQL(&Table{Name: "events"}), `TRUNCATE "events";`)
}

func TestThatTableNamesAreQuoted(t *testing.T) {
	is := is.New(t)

	table := &Table{Name: `events"; DROP TABLE users; --`, Columns: []string{"user_id"}}

	is.Equal(truncateTableSQL(table), `TRUNCATE "events""; DROP TABLE users; --";`)
}
