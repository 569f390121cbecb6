package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

// newTestDB builds a small match database on disk and opens it read-only
// through the package API.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.sqlite")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	fixture := `
	CREATE TABLE clubs (clubId INTEGER PRIMARY KEY, clubName TEXT);
	CREATE TABLE players (playerId INTEGER PRIMARY KEY, playerName TEXT);
	CREATE TABLE matches (
		matchId INTEGER PRIMARY KEY,
		homeClubId INTEGER, awayClubId INTEGER,
		homeClubFinalScore INTEGER, awayClubFinalScore INTEGER
	);
	INSERT INTO clubs VALUES (1, 'Feyenoord'), (2, 'Ajax'), (3, 'PSV'), (4, '');
	INSERT INTO players VALUES (1, 'Coen Moulijn'), (2, 'Sjaak Swart'), (3, NULL);
	INSERT INTO matches VALUES (1, 1, 2, 3, 1), (2, 2, 1, 0, 2);
	`
	if _, err := raw.Exec(fixture); err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.sqlite")); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestExecuteOrderedRows(t *testing.T) {
	d := newTestDB(t)

	result, err := d.Execute(context.Background(), "SELECT clubId, clubName FROM clubs WHERE clubName != '' ORDER BY clubId")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "clubId" {
		t.Errorf("columns = %v", result.Columns)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(result.Rows))
	}
	if result.Rows[0]["clubName"] != "Feyenoord" {
		t.Errorf("first row = %v", result.Rows[0])
	}
}

func TestExecuteRuntimeError(t *testing.T) {
	d := newTestDB(t)

	_, err := d.Execute(context.Background(), "SELECT nope FROM clubs")
	if err == nil {
		t.Fatal("expected execution error for unknown column")
	}
	if !strings.Contains(err.Error(), ErrExecution.Error()) {
		t.Errorf("err = %v, want wrapped ErrExecution", err)
	}
}

func TestCheckSyntax(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if ok, errText := d.CheckSyntax(ctx, "SELECT clubName FROM clubs LIMIT 5"); !ok {
		t.Errorf("valid SQL rejected: %s", errText)
	}
	ok, errText := d.CheckSyntax(ctx, "SELEC clubName FROOM clubs")
	if ok {
		t.Fatal("invalid SQL accepted")
	}
	if errText == "" {
		t.Error("missing error text for invalid SQL")
	}
}

func TestDistinctValuesFiltersEmpty(t *testing.T) {
	d := newTestDB(t)

	clubs, err := d.DistinctValues(context.Background(), "clubName", "clubs")
	if err != nil {
		t.Fatalf("DistinctValues: %v", err)
	}
	if len(clubs) != 3 {
		t.Errorf("clubs = %v, want 3 non-empty names", clubs)
	}
	for _, c := range clubs {
		if c == "" {
			t.Error("empty value not filtered")
		}
	}
}

func TestDistinctValuesRejectsBadIdentifier(t *testing.T) {
	d := newTestDB(t)

	if _, err := d.DistinctValues(context.Background(), "clubName; DROP TABLE clubs", "clubs"); err == nil {
		t.Fatal("expected identifier validation error")
	}
}

func TestDescribeSchemaContainsTablesAndSamples(t *testing.T) {
	d := newTestDB(t)

	schema, err := d.DescribeSchema(context.Background())
	if err != nil {
		t.Fatalf("DescribeSchema: %v", err)
	}
	for _, want := range []string{"CREATE TABLE clubs", "CREATE TABLE matches", "Feyenoord", "rows from clubs table"} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema description missing %q:\n%s", want, schema)
		}
	}
}
