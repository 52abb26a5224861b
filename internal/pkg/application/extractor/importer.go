package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/eventlake/amplitude-connector/internal/pkg/infrastructure/storage"
	"github.com/eventlake/amplitude-connector/pkg/amplitude"
	"github.com/eventlake/amplitude-connector/pkg/amplitude/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Import reads rows from the source table and turns the configured columns
// into user property updates, sent in chunks of at most chunkSize records
// (default 2000, matching the batch endpoint cap). A failed chunk is logged
// and counted, then the loop moves on, so one bad chunk does not abort the
// rest of the import.
func (e *extractor) Import(ctx context.Context, cfg ImportConfig, source storage.Reader) (*ImportSummary, error) {
	var err error

	ctx, span := tracer.Start(ctx, "import-user-properties",
		trace.WithAttributes(attribute.String("source-table", cfg.Table)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	table, err := source.Read(ctx)
	if err != nil {
		return nil, err
	}

	lookup, err := newColumnLookup(table, cfg)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{}

	identifications := make([]amplitude.Identification, 0, len(table.Rows))

	for _, row := range table.Rows {
		id := amplitude.Identification{}

		if lookup.userID >= 0 {
			id.UserID = row[lookup.userID]
		}
		if lookup.deviceID >= 0 {
			id.DeviceID = row[lookup.deviceID]
		}

		if id.UserID == "" && id.DeviceID == "" {
			summary.SkippedRows++
			continue
		}

		props := map[string]any{}
		for _, p := range lookup.properties {
			if value := row[p.column]; value != "" {
				props[p.property] = value
			}
		}
		id.UserProperties = map[string]any{"$set": props}

		identifications = append(identifications, id)
	}

	summary.RowCount = len(identifications)

	if summary.SkippedRows > 0 {
		log.Warn("skipped rows without a user or device id", "count", summary.SkippedRows)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = amplitude.MaxBatchEventCount
	}

	pause := e.chunkPause
	if cfg.PauseSeconds > 0 {
		pause = time.Duration(cfg.PauseSeconds) * time.Second
	}

	for start := 0; start < len(identifications); start += chunkSize {
		end := min(start+chunkSize, len(identifications))
		chunk := identifications[start:end]
		summary.ChunkCount++

		_, cerr := e.client.UpdateUserProperties(ctx, chunk)
		if cerr != nil {
			summary.FailedChunks++
			log.Error("failed to update user properties", "chunk", summary.ChunkCount, "size", len(chunk), "err", cerr.Error())
		}

		if end < len(identifications) {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return summary, err
			case <-time.After(pause):
			}
		}
	}

	log.Info("user property import done",
		"rows", summary.RowCount,
		"chunks", summary.ChunkCount,
		"failed", summary.FailedChunks,
	)

	return summary, nil
}

type columnLookup struct {
	userID     int
	deviceID   int
	properties []propertyColumn
}

type propertyColumn struct {
	column   int
	property string
}

func newColumnLookup(table *storage.Table, cfg ImportConfig) (*columnLookup, error) {
	find := func(name string) int {
		for i, column := range table.Columns {
			if column == name {
				return i
			}
		}
		return -1
	}

	missing := func(name string) error {
		return errors.NewFieldNotFoundError(
			fmt.Sprintf("Field '%s' not found in table '%s'", name, table.Name),
			map[string]any{"field": name, "available": table.Columns},
		)
	}

	lookup := &columnLookup{userID: -1, deviceID: -1}

	if cfg.UserIDColumn != "" {
		if lookup.userID = find(cfg.UserIDColumn); lookup.userID < 0 {
			return nil, missing(cfg.UserIDColumn)
		}
	}

	if cfg.DeviceIDColumn != "" {
		if lookup.deviceID = find(cfg.DeviceIDColumn); lookup.deviceID < 0 {
			return nil, missing(cfg.DeviceIDColumn)
		}
	}

	if lookup.userID < 0 && lookup.deviceID < 0 {
		return nil, errors.NewValidationError(
			"userIdColumn or deviceIdColumn is required",
			map[string]any{"suggestion": "Configure at least one identity column for the import"},
		)
	}

	for _, p := range cfg.Properties {
		idx := find(p.Column)
		if idx < 0 {
			return nil, missing(p.Column)
		}
		lookup.properties = append(lookup.properties, propertyColumn{column: idx, property: p.Property})
	}

	return lookup, nil
}
