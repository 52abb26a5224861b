package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

type csvWriter struct {
	dir         string
	destination string
}

// NewCSVWriter returns a Writer that stores each table as <dir>/<name>.csv
// with a header row, along with a <name>.csv.manifest file describing the
// table for the downstream storage platform. The destination argument is
// the fully qualified table id in that platform, such as
// out.c-amplitude.events.
func NewCSVWriter(dir, destination string) Writer {
	return &csvWriter{dir: dir, destination: destination}
}

type manifest struct {
	Destination string   `json:"destination"`
	Columns     []string `json:"columns"`
	Incremental bool     `json:"incremental"`
	Delimiter   string   `json:"delimiter"`
	Enclosure   string   `json:"enclosure"`
}

func (w *csvWriter) Write(ctx context.Context, table *Table) error {
	log := logging.GetFromContext(ctx)

	err := os.MkdirAll(w.dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.dir, table.Name+".csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	err = cw.Write(table.Columns)
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err = cw.WriteAll(table.Rows)
	if err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}

	err = w.writeManifest(path, table)
	if err != nil {
		return err
	}

	log.Debug("wrote table to csv", "path", path, "rows", len(table.Rows))

	return nil
}

func (w *csvWriter) writeManifest(tablePath string, table *Table) error {
	m := manifest{
		Destination: w.destination,
		Columns:     table.Columns,
		Incremental: false,
		Delimiter:   ",",
		Enclosure:   `"`,
	}

	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	err = os.WriteFile(tablePath+".manifest", body, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

type csvReader struct {
	path string
}

// NewCSVReader returns a Reader for a csv file written with a header row.
func NewCSVReader(path string) Reader {
	return &csvReader{path: path}
}

func (r *csvReader) Read(ctx context.Context) (*Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("input file %s is empty", r.path)
	}

	name := filepath.Base(r.path)
	name = name[:len(name)-len(filepath.Ext(name))]

	return &Table{
		Name:    name,
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}
