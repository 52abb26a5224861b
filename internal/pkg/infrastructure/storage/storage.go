package storage

import (
	"context"
)

// Table is one rectangular batch of rows on its way to or from a sink.
// All values are strings since the downstream schema is string typed.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

type Writer interface {
	Write(ctx context.Context, table *Table) error
}

type Reader interface {
	Read(ctx context.Context) (*Table, error)
}
