package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/eventlake/amplitude-connector/internal/pkg/infrastructure/storage"
	"github.com/eventlake/amplitude-connector/pkg/amplitude"
	amperrors "github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
	"github.com/eventlake/amplitude-connector/pkg/test"

	"github.com/matryer/is"
)

func TestExportWritesTheTwelveColumnTable(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		ExportEventsFunc: func(ctx context.Context, start, end string) (*amplitude.ExportResult, error) {
			return &amplitude.ExportResult{
				Events: []amplitude.EventRecord{
					{
						"event_id":     float64(42),
						"user_id":      "user-00001",
						"device_id":    "device-0001",
						"event_type":   "Complete Purchase",
						"event_time":   "2025-01-01 10:30:00.000000",
						"amplitude_id": float64(123456789),
						"platform":     "iOS",
						"os_name":      "ios",
						"city":         "Prague",
						"country":      "CZ",
						"event_properties": map[string]any{
							"revenue": 79.99,
						},
					},
					{
						"event_id":   float64(43),
						"user_id":    "user-00002",
						"event_type": "Login",
					},
				},
				SkippedLines: 1,
			}, nil
		},
	}

	sink := &tableSink{}

	summary, err := New(client).Export(context.Background(), ExportConfig{
		Start: "20250101T00", End: "20250102T00", Table: "events",
	}, sink)

	is.NoErr(err)
	is.Equal(summary.EventCount, 2)
	is.Equal(summary.SkippedLines, 1)

	is.Equal(len(sink.tables), 1) // should have written a single table
	table := sink.tables[0]

	is.Equal(table.Name, "events")
	is.Equal(table.Columns, exportColumns)
	is.Equal(len(table.Columns), 12)

	is.Equal(table.Rows[0], []string{
		"42", "user-00001", "device-0001", "Complete Purchase", "2025-01-01 10:30:00.000000",
		"123456789", "iOS", "ios", "Prague", "CZ",
		`{"revenue":79.99}`, "{}",
	})
	is.Equal(table.Rows[1][0], "43")
	is.Equal(table.Rows[1][10], "{}") // absent properties should flatten to empty objects

	calls := client.ExportEventsCalls()
	is.Equal(len(calls), 1)
	is.Equal(calls[0].Start, "20250101T00")
	is.Equal(calls[0].End, "20250102T00")
}

func TestThatAnEmptyExportWritesNoTable(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		ExportEventsFunc: func(ctx context.Context, start, end string) (*amplitude.ExportResult, error) {
			return &amplitude.ExportResult{}, nil
		},
	}

	sink := &tableSink{}

	summary, err := New(client).Export(context.Background(), ExportConfig{
		Start: "20250101T00", End: "20250102T00", Table: "events",
	}, sink)

	is.NoErr(err)
	is.Equal(summary.EventCount, 0)
	is.Equal(len(sink.tables), 0) // nothing should have been written
}

func TestThatExportErrorsPropagate(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		ExportEventsFunc: func(ctx context.Context, start, end string) (*amplitude.ExportResult, error) {
			return nil, amperrors.NewValidationError("Invalid start time format. Expected YYYYMMDDTHH (e.g., 20250101T00)", nil)
		},
	}

	sink := &tableSink{}

	_, err := New(client).Export(context.Background(), ExportConfig{Start: "bad", End: "20250102T00"}, sink)

	is.True(errors.Is(err, amperrors.ErrValidation))
	is.Equal(len(sink.tables), 0)
}

func TestImportChunksRowsIntoIdentifyCalls(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		UpdateUserPropertiesFunc: func(ctx context.Context, identifications []amplitude.Identification) (*amplitude.IdentifyResult, error) {
			return &amplitude.IdentifyResult{Success: true, StatusCode: 200}, nil
		},
	}

	rows := make([][]string, 4500)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("user-%05d", i), "premium"}
	}

	source := &tableSource{table: &storage.Table{
		Name:    "users",
		Columns: []string{"user_id", "plan"},
		Rows:    rows,
	}}

	summary, err := New(client, ChunkPause(0)).Import(context.Background(), ImportConfig{
		Table:        "users",
		UserIDColumn: "user_id",
		Properties:   []PropertyMapping{{Column: "plan", Property: "subscription_plan"}},
	}, source)

	is.NoErr(err)
	is.Equal(summary.RowCount, 4500)
	is.Equal(summary.ChunkCount, 3)
	is.Equal(summary.FailedChunks, 0)

	calls := client.UpdateUserPropertiesCalls()
	is.Equal(len(calls), 3)
	is.Equal(len(calls[0].Identifications), 2000)
	is.Equal(len(calls[1].Identifications), 2000)
	is.Equal(len(calls[2].Identifications), 500)

	first := calls[0].Identifications[0]
	is.Equal(first.UserID, "user-00000")
	is.Equal(first.UserProperties, map[string]any{"$set": map[string]any{"subscription_plan": "premium"}})
}

func TestThatConfiguredChunkSizesAreHonored(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		UpdateUserPropertiesFunc: func(ctx context.Context, identifications []amplitude.Identification) (*amplitude.IdentifyResult, error) {
			return &amplitude.IdentifyResult{Success: true, StatusCode: 200}, nil
		},
	}

	rows := make([][]string, 5)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("user-%05d", i)}
	}

	source := &tableSource{table: &storage.Table{Name: "users", Columns: []string{"user_id"}, Rows: rows}}

	summary, err := New(client, ChunkPause(0)).Import(context.Background(), ImportConfig{
		Table:        "users",
		UserIDColumn: "user_id",
		ChunkSize:    2,
	}, source)

	is.NoErr(err)
	is.Equal(summary.ChunkCount, 3)

	calls := client.UpdateUserPropertiesCalls()
	is.Equal(len(calls[0].Identifications), 2)
	is.Equal(len(calls[2].Identifications), 1)
}

func TestThatAFailedChunkDoesNotAbortTheImport(t *testing.T) {
	is := is.New(t)

	callCount := 0
	client := &test.ClientMock{
		UpdateUserPropertiesFunc: func(ctx context.Context, identifications []amplitude.Identification) (*amplitude.IdentifyResult, error) {
			callCount++
			if callCount == 1 {
				return nil, amperrors.NewRateLimitError("API rate limit exceeded: Too many requests. Retry after 60 seconds.", nil)
			}
			return &amplitude.IdentifyResult{Success: true, StatusCode: 200}, nil
		},
	}

	rows := make([][]string, 4001)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("user-%05d", i)}
	}

	source := &tableSource{table: &storage.Table{Name: "users", Columns: []string{"user_id"}, Rows: rows}}

	summary, err := New(client, ChunkPause(0)).Import(context.Background(), ImportConfig{
		Table:        "users",
		UserIDColumn: "user_id",
	}, source)

	is.NoErr(err) // chunk failures are counted, not fatal
	is.Equal(summary.ChunkCount, 3)
	is.Equal(summary.FailedChunks, 1)
	is.Equal(callCount, 3)
}

func TestThatImportFailsWhenAConfiguredColumnIsMissing(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{}

	source := &tableSource{table: &storage.Table{
		Name:    "users",
		Columns: []string{"user_id", "plan"},
		Rows:    [][]string{{"user-00001", "premium"}},
	}}

	_, err := New(client).Import(context.Background(), ImportConfig{
		Table:        "users",
		UserIDColumn: "user_id",
		Properties:   []PropertyMapping{{Column: "tier", Property: "tier"}},
	}, source)

	is.True(errors.Is(err, amperrors.ErrFieldNotFound))
	is.Equal(err.Error(), "Field 'tier' not found in table 'users'")
}

func TestThatRowsWithoutAnIdentityAreSkipped(t *testing.T) {
	is := is.New(t)

	client := &test.ClientMock{
		UpdateUserPropertiesFunc: func(ctx context.Context, identifications []amplitude.Identification) (*amplitude.IdentifyResult, error) {
			return &amplitude.IdentifyResult{Success: true, StatusCode: 200}, nil
		},
	}

	source := &tableSource{table: &storage.Table{
		Name:    "users",
		Columns: []string{"user_id", "device_id"},
		Rows: [][]string{
			{"user-00001", ""},
			{"", ""},
			{"", "device-0042"},
		},
	}}

	summary, err := New(client, ChunkPause(0)).Import(context.Background(), ImportConfig{
		Table:          "users",
		UserIDColumn:   "user_id",
		DeviceIDColumn: "device_id",
	}, source)

	is.NoErr(err)
	is.Equal(summary.RowCount, 2)
	is.Equal(summary.SkippedRows, 1)
}

type tableSink struct {
	tables []*storage.Table
}

func (s *tableSink) Write(ctx context.Context, table *storage.Table) error {
	s.tables = append(s.tables, table)
	return nil
}

type tableSource struct {
	table *storage.Table
}

func (s *tableSource) Read(ctx context.Context) (*storage.Table, error) {
	return s.table, nil
}
