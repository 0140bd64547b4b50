package refdata

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// CopyStats reports how many rows CopyTo wrote per table.
type CopyStats map[string]int

// Total returns the number of rows copied across all tables.
func (c CopyStats) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// CopyTo copies every reference table into dst, creating the schema first.
// Used to build a DuckDB snapshot from the SQLite database.
func (s *Store) CopyTo(ctx context.Context, dst *Store) (CopyStats, error) {
	if err := dst.CreateSchema(ctx); err != nil {
		return nil, err
	}

	stats := make(CopyStats, len(tables))
	for _, t := range tables {
		rows, err := s.readTable(ctx, t)
		if err != nil {
			return stats, err
		}
		if err := dst.InsertRows(ctx, t.name, rows); err != nil {
			return stats, err
		}
		stats[t.name] = len(rows)
		s.logger.Debug("copied table", zap.String("table", t.name), zap.Int("rows", len(rows)))
	}
	return stats, nil
}

func (s *Store) readTable(ctx context.Context, t table) ([][]any, error) {
	op := "read " + t.name
	rows, err := s.query(ctx, op, fmt.Sprintf("SELECT %s FROM %s", t.columnList(), t.name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

// InsertRows writes rows into a reference table. Values are given in schema
// column order and coerced to the column types; nil is stored as NULL.
// DuckDB stores use the Appender API, other drivers a prepared INSERT in one transaction.
func (s *Store) InsertRows(ctx context.Context, tableName string, rows [][]any) error {
	t, ok := lookupTable(tableName)
	if !ok {
		return fmt.Errorf("unknown table %q", tableName)
	}
	if len(rows) == 0 {
		return nil
	}

	coerced := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(t.columns) {
			return fmt.Errorf("%s row %d: got %d values, want %d", t.name, i, len(row), len(t.columns))
		}
		vals := make([]any, len(row))
		for j, c := range t.columns {
			v, err := coerce(c.kind, row[j])
			if err != nil {
				return fmt.Errorf("%s row %d column %s: %w", t.name, i, c.name, err)
			}
			vals[j] = v
		}
		coerced[i] = vals
	}

	if s.driver == DriverDuckDB {
		return s.appendRows(ctx, t, coerced)
	}
	return s.execRows(ctx, t, coerced)
}

func (s *Store) appendRows(ctx context.Context, t table, rows [][]any) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", t.name)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, row := range rows {
		args := make([]driver.Value, len(row))
		for i, v := range row {
			args[i] = v
		}
		if err := appender.AppendRow(args...); err != nil {
			return fmt.Errorf("append %s row: %w", t.name, err)
		}
	}
	return appender.Flush()
}

func (s *Store) execRows(ctx context.Context, t table, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, t.insertSQL())
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", t.name, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return tx.Commit()
}

func lookupTable(name string) (table, bool) {
	for _, t := range tables {
		if t.name == name {
			return t, true
		}
	}
	return table{}, false
}

// coerce converts a scanned or caller-supplied value to the Go type the
// column kind expects: int64, float64 or string.
func coerce(kind columnKind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch kind {
	case kindInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case float64:
			return int64(x), nil
		case bool:
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			if x == "" {
				return nil, nil
			}
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse integer %q: %w", x, err)
			}
			return n, nil
		}
	case kindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		case string:
			if x == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("parse number %q: %w", x, err)
			}
			return f, nil
		}
	case kindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case int:
			return strconv.Itoa(x), nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}
