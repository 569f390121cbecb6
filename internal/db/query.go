package db

import (
	"context"
	"fmt"
	"regexp"
)

// Result is an executed query's ordered result set.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Execute runs a validated SELECT statement and returns its rows in order.
// Failures wrap ErrExecution.
func (d *DB) Execute(ctx context.Context, query string) (*Result, error) {
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecution, err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return result, nil
}

// CheckSyntax validates a statement by asking SQLite to EXPLAIN it. Returns
// (true, "") for valid SQL and (false, errorText) otherwise; it never
// returns a Go error because an invalid statement is an expected outcome.
func (d *DB) CheckSyntax(ctx context.Context, query string) (bool, string) {
	rows, err := d.sql.QueryContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return false, err.Error()
	}
	rows.Close()
	return true, ""
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DistinctValues returns all distinct non-empty values of column in table.
// Identifiers are validated, not quoted; they come from configuration, never
// from user input.
func (d *DB) DistinctValues(ctx context.Context, column, table string) ([]string, error) {
	if !identifierPattern.MatchString(column) || !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("db: invalid identifier %q.%q", table, column)
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL AND %s != ''",
		column, table, column, column)
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db: distinct values of %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("db: scan distinct value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
