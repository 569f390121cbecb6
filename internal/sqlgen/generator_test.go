package sqlgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"matchday/internal/db"
	"matchday/internal/examples"

	"go.uber.org/zap/zaptest"
)

// fakeClient returns canned responses and records the prompts it received.
type fakeClient struct {
	response string
	err      error
	systems  []string
	prompts  []string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestCleanStripsFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"SELECT 1;", "SELECT 1;"},
		{"  select clubName from clubs  ", "select clubName from clubs"},
		{"```sql\nSELECT 1;\n```", "SELECT 1;"},
		{"```\nSELECT clubName\nFROM clubs;\n```", "SELECT clubName FROM clubs;"},
		{"SELECT a,\n b FROM t;", "SELECT a,  b FROM t;"},
	}
	for _, tc := range cases {
		got, err := Clean(tc.in)
		if err != nil {
			t.Errorf("Clean(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanRejectsNonSelect(t *testing.T) {
	for _, in := range []string{"", "DROP TABLE clubs;", "UPDATE clubs SET clubName='x';", "here is your query"} {
		if _, err := Clean(in); !errors.Is(err, ErrNotReadOnly) {
			t.Errorf("Clean(%q) err = %v, want ErrNotReadOnly", in, err)
		}
	}
}

func TestGenerateIncludesExamplesAndPersona(t *testing.T) {
	client := &fakeClient{response: "SELECT COUNT(*) FROM matches;"}
	store := examples.NewStore("", zaptest.NewLogger(t))
	g := NewGenerator(client, store, "Feyenoord", zaptest.NewLogger(t))

	sql, err := g.Generate(context.Background(), "Hoe vaak heeft Feyenoord gewonnen van Ajax?", "user: hoi", "CREATE TABLE matches (...)")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sql != "SELECT COUNT(*) FROM matches;" {
		t.Errorf("sql = %q", sql)
	}
	if !strings.Contains(client.systems[0], "Feyenoord") {
		t.Error("system prompt missing club name")
	}
	if !strings.Contains(client.prompts[0], "=== Example queries:") {
		t.Error("prompt missing few-shot examples")
	}
	if !strings.Contains(client.prompts[0], "=== Schemas:") {
		t.Error("prompt missing schema block")
	}
}

func TestGenerateWithoutStore(t *testing.T) {
	client := &fakeClient{response: "SELECT 1;"}
	g := NewGenerator(client, nil, "", zaptest.NewLogger(t))

	if _, err := g.Generate(context.Background(), "iets", "", "schema"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(client.prompts[0], "=== Example queries:") {
		t.Error("unexpected example block without a store")
	}
}

func TestFixPassesErrorContext(t *testing.T) {
	client := &fakeClient{response: "SELECT clubName FROM clubs;"}
	g := NewGenerator(client, nil, "", zaptest.NewLogger(t))

	sql, err := g.Fix(context.Background(), "welke clubs?", "CREATE TABLE clubs (...)", "SELEC clubName FROOM clubs", `near "SELEC": syntax error`)
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if sql != "SELECT clubName FROM clubs;" {
		t.Errorf("sql = %q", sql)
	}
	for _, want := range []string{"SELEC clubName FROOM clubs", "syntax error", "CREATE TABLE clubs"} {
		if !strings.Contains(client.prompts[0], want) {
			t.Errorf("fix prompt missing %q", want)
		}
	}
}

func TestGenerateModelErrorPropagates(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	g := NewGenerator(client, nil, "", zaptest.NewLogger(t))

	if _, err := g.Generate(context.Background(), "vraag", "", "schema"); err == nil {
		t.Fatal("expected error from failing client")
	}
}

func TestFormatAnswerFallsBackToApology(t *testing.T) {
	f := NewFormatter(&fakeClient{err: errors.New("boom")}, "", zaptest.NewLogger(t))

	got := f.FormatAnswer(context.Background(), "vraag", &db.Result{Columns: []string{"n"}, Rows: []map[string]any{{"n": 3}}})
	if got != apologyResults {
		t.Errorf("answer = %q, want apology", got)
	}
}

func TestFormatAnswerRendersRows(t *testing.T) {
	client := &fakeClient{response: "Drie keer!"}
	f := NewFormatter(client, "", zaptest.NewLogger(t))

	result := &db.Result{
		Columns: []string{"clubName", "wins"},
		Rows: []map[string]any{
			{"clubName": "Feyenoord", "wins": 3},
		},
	}
	if got := f.FormatAnswer(context.Background(), "hoe vaak?", result); got != "Drie keer!" {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(client.prompts[0], "clubName=Feyenoord, wins=3") {
		t.Errorf("prompt missing rendered rows:\n%s", client.prompts[0])
	}
}

func TestFormatAnswerEmptyResult(t *testing.T) {
	client := &fakeClient{response: "Dat weet ik helaas niet."}
	f := NewFormatter(client, "", zaptest.NewLogger(t))

	f.FormatAnswer(context.Background(), "vraag", &db.Result{Columns: []string{"n"}})
	if !strings.Contains(client.prompts[0], "Geen resultaten gevonden.") {
		t.Error("prompt missing empty-result marker")
	}
}

func TestFormatErrorIncludesSchema(t *testing.T) {
	client := &fakeClient{response: "Kun je je vraag anders stellen?"}
	f := NewFormatter(client, "", zaptest.NewLogger(t))

	got := f.FormatError(context.Background(), "vraag", "no such column: nope", "CREATE TABLE clubs (...)")
	if got != "Kun je je vraag anders stellen?" {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(client.prompts[0], "CREATE TABLE clubs") {
		t.Error("prompt missing schema")
	}
	if !strings.Contains(client.systems[0], "verduidelijking") {
		t.Error("system prompt missing clarification guidance")
	}
}
