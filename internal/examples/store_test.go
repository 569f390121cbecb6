package examples

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewStoreWithoutFileUsesBuiltins(t *testing.T) {
	s := NewStore("", zaptest.NewLogger(t))
	if s.Count() == 0 {
		t.Fatal("expected built-in examples")
	}
}

func TestNewStoreMissingFileDegradesToBuiltins(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.yaml"), zaptest.NewLogger(t))
	if s.Count() != len(defaultExamples()) {
		t.Errorf("count = %d, want %d built-ins", s.Count(), len(defaultExamples()))
	}
}

func TestNewStoreMergesFileExamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.yaml")
	content := `
- question: "Wie scoorde de meeste doelpunten?"
  sql: "SELECT playerName, COUNT(*) AS goals FROM goals JOIN players USING (playerId) GROUP BY playerName ORDER BY goals DESC LIMIT 1;"
- question: ""
  sql: "SELECT 1;"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, zaptest.NewLogger(t))
	// Built-ins plus one valid file entry; the blank-question entry is dropped.
	if want := len(defaultExamples()) + 1; s.Count() != want {
		t.Errorf("count = %d, want %d", s.Count(), want)
	}
}

func TestTopKRanksByOverlap(t *testing.T) {
	s := NewStore("", zaptest.NewLogger(t))

	got := s.TopK("Hoe vaak heeft Feyenoord gewonnen van Ajax?", 2)
	if len(got) == 0 {
		t.Fatal("expected at least one example")
	}
	if !strings.Contains(got[0].Question, "Feyenoord gewonnen van Ajax") {
		t.Errorf("top example = %q, want the Feyenoord/Ajax win count", got[0].Question)
	}
}

func TestTopKNoOverlapReturnsNothing(t *testing.T) {
	s := NewStore("", zaptest.NewLogger(t))

	if got := s.TopK("completely unrelated weather forecast", 3); len(got) != 0 {
		t.Errorf("got %d examples for unrelated question, want 0", len(got))
	}
}

func TestTopKZeroK(t *testing.T) {
	s := NewStore("", zaptest.NewLogger(t))
	if got := s.TopK("Feyenoord", 0); got != nil {
		t.Errorf("got %v for k=0, want nil", got)
	}
}
