package db

import (
	"context"
	"fmt"
	"strings"
)

// sampleRowsPerTable is how many example rows accompany each table's DDL in
// the schema description handed to the model.
const sampleRowsPerTable = 3

// DescribeSchema renders the database schema as text: each user table's
// CREATE statement followed by a few sample rows. The text is what the model
// sees, so it favors readability over completeness.
func (d *DB) DescribeSchema(ctx context.Context) (string, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT name, sql FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("db: read schema: %w", err)
	}
	defer rows.Close()

	type table struct{ name, ddl string }
	var tables []table
	for rows.Next() {
		var t table
		if err := rows.Scan(&t.name, &t.ddl); err != nil {
			return "", fmt.Errorf("db: scan schema row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("db: read schema: %w", err)
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("db: no tables found in %s", d.path)
	}

	var sb strings.Builder
	for _, t := range tables {
		sb.WriteString(t.ddl)
		sb.WriteString("\n")
		sample, err := d.sampleRows(ctx, t.name)
		if err == nil && sample != "" {
			fmt.Fprintf(&sb, "/*\n%d rows from %s table:\n%s*/\n", sampleRowsPerTable, t.name, sample)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// sampleRows formats up to sampleRowsPerTable rows of a table as
// tab-separated lines with a header.
func (d *DB) sampleRows(ctx context.Context, table string) (string, error) {
	if !identifierPattern.MatchString(table) {
		return "", fmt.Errorf("db: invalid table name %q", table)
	}
	result, err := d.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, sampleRowsPerTable))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(result.Columns, "\t"))
	sb.WriteString("\n")
	for _, row := range result.Rows {
		fields := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			fields[i] = fmt.Sprint(row[col])
		}
		sb.WriteString(strings.Join(fields, "\t"))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
