// Package refdata provides read access to the reference database of genes,
// family phenotypes and structural variant calls.
// The primary backend is SQLite; a DuckDB snapshot can serve the same reads.
package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

// QueryObserver receives the duration of every store operation.
type QueryObserver func(op string, d time.Duration)

// Store manages a connection pool to the reference database.
// All reads are safe for concurrent use.
type Store struct {
	db       *sql.DB
	driver   string
	path     string
	logger   *zap.Logger
	observer QueryObserver
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	readOnly bool
}

// ReadOnly opens an existing database without write access.
func ReadOnly() Option {
	return func(o *openOptions) { o.readOnly = true }
}

// Open opens a reference database with the given driver.
// Use an empty path for an in-memory database.
func Open(driver, path string, opts ...Option) (*Store, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.readOnly {
		if path == "" {
			return nil, fmt.Errorf("read-only store requires a database path")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("database file: %w", err)
		}
	}

	dsn, err := dataSourceName(driver, path, o.readOnly)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if path == "" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	return New(db, driver, path), nil
}

// New wraps an existing *sql.DB.
func New(db *sql.DB, driver, path string) *Store {
	return &Store{
		db:     db,
		driver: driver,
		path:   path,
		logger: zap.NewNop(),
	}
}

func dataSourceName(driver, path string, readOnly bool) (string, error) {
	switch driver {
	case DriverSQLite:
		if path == "" {
			return ":memory:", nil
		}
		dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
		if readOnly {
			dsn += "&mode=ro"
		}
		return dsn, nil
	case DriverDuckDB:
		if readOnly {
			return path + "?access_mode=read_only", nil
		}
		return path, nil
	}
	return "", fmt.Errorf("unsupported store driver %q (want %s or %s)", driver, DriverSQLite, DriverDuckDB)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Path returns the database path; empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// SetLogger sets the logger for query failures.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// SetObserver registers a hook that receives query durations.
func (s *Store) SetObserver(fn QueryObserver) {
	s.observer = fn
}

// Name identifies the store in health reports.
func (s *Store) Name() string {
	return "refdata-" + s.driver
}

// Check verifies that the database answers queries.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// Status describes the contents of the reference database.
type Status struct {
	Name       string `json:"name"`
	Driver     string `json:"driver"`
	GenesTable bool   `json:"genesTable"`
	GeneCount  int    `json:"geneCount"`
}

// Status reports whether the genes table exists and how many genes it holds.
func (s *Store) Status(ctx context.Context) (Status, error) {
	st := Status{Name: s.Name(), Driver: s.driver}

	q := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='genes'"
	if s.driver == DriverDuckDB {
		q = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name='genes'"
	}

	var n int
	if err := s.queryRow(ctx, "status", q).Scan(&n); err != nil {
		return st, storageErr("status", err)
	}
	st.GenesTable = n > 0
	if !st.GenesTable {
		return st, nil
	}

	if err := s.queryRow(ctx, "status", "SELECT COUNT(*) FROM genes").Scan(&st.GeneCount); err != nil {
		return st, storageErr("status", err)
	}
	return st, nil
}

// query runs a read, timing it and wrapping failures in a *StorageError.
func (s *Store) query(ctx context.Context, op, q string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	s.observe(op, start)
	if err != nil {
		s.logger.Warn("query failed", zap.String("op", op), zap.Error(err))
		return nil, storageErr(op, err)
	}
	return rows, nil
}

func (s *Store) queryRow(ctx context.Context, op, q string, args ...any) *sql.Row {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, q, args...)
	s.observe(op, start)
	return row
}

func (s *Store) observe(op string, start time.Time) {
	if s.observer != nil {
		s.observer(op, time.Since(start))
	}
}

// chromFilter returns an IN clause matching every stored spelling of chrom.
func chromFilter(column, chrom string) (string, []any) {
	aliases := genome.ChromAliases(chrom)
	args := make([]any, len(aliases))
	for i, a := range aliases {
		args[i] = a
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(aliases)), ", ")
	return fmt.Sprintf("%s IN (%s)", column, marks), args
}
