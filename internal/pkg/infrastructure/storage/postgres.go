package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "amplitude"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

func (c Config) Enabled() bool {
	return c.host != ""
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return conn, err
}

type pgWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter returns a Writer that creates the destination table if
// needed, truncates it, and bulk loads rows with the copy protocol, so a
// rerun replaces the previous export the way the csv writer overwrites its
// file. Every column is TEXT, matching the export schema.
func NewPostgresWriter(pool *pgxpool.Pool) Writer {
	return &pgWriter{pool: pool}
}

func (w *pgWriter) Write(ctx context.Context, table *Table) error {
	_, err := w.pool.Exec(ctx, createTableSQL(table))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}

	_, err = w.pool.Exec(ctx, truncateTableSQL(table))
	if err != nil {
		return fmt.Errorf("failed to truncate table %s: %w", table.Name, err)
	}

	rows := make([][]any, len(table.Rows))
	for i, row := range table.Rows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		rows[i] = values
	}

	_, err = w.pool.CopyFrom(ctx, pgx.Identifier{table.Name}, table.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", table.Name, err)
	}

	return nil
}

func createTableSQL(table *Table) string {
	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = pgx.Identifier{c}.Sanitize() + " TEXT"
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s);",
		pgx.Identifier{table.Name}.Sanitize(), strings.Join(columns, ", "),
	)
}

func truncateTableSQL(table *Table) string {
	return fmt.Sprintf("TRUNCATE %s;", pgx.Identifier{table.Name}.Sanitize())
}

type pgReader struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresReader returns a Reader over all rows of the named table.
func NewPostgresReader(pool *pgxpool.Pool, table string) Reader {
	return &pgReader{pool: pool, table: table}
}

func (r *pgReader) Read(ctx context.Context) (*Table, error) {
	sql := fmt.Sprintf("SELECT * FROM %s;", pgx.Identifier{r.table}.Sanitize())

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	columns := make([]string, len(descriptions))
	for i, fd := range descriptions {
		columns[i] = fd.Name
	}

	result := make([][]string, 0, 256)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			row[i] = fmt.Sprintf("%v", v)
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Table{Name: r.table, Columns: columns, Rows: result}, nil
}
