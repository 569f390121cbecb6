// Package sqlgen turns natural-language questions into SQLite queries and
// query results back into natural-language answers, by prompting an LLM.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"matchday/internal/examples"
	"matchday/internal/llm"
)

// ErrNotReadOnly is returned when the model produced something other than a
// single SELECT statement.
var ErrNotReadOnly = errors.New("generated query is not a SELECT statement")

// Generator produces and repairs SQL queries.
type Generator struct {
	client   llm.Client
	store    *examples.Store
	clubName string
	shots    int
	logger   *zap.Logger
}

// NewGenerator wires a generator to its model client and example store.
// The store may be nil; generation then runs without few-shot examples.
func NewGenerator(client llm.Client, store *examples.Store, clubName string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clubName == "" {
		clubName = "Feyenoord"
	}
	return &Generator{
		client:   client,
		store:    store,
		clubName: clubName,
		shots:    3,
		logger:   logger,
	}
}

// Generate asks the model for a SQL query answering the question, given the
// running conversation and the database schema.
func (g *Generator) Generate(ctx context.Context, question, conversation, schema string) (string, error) {
	var shots []examples.Example
	if g.store != nil {
		shots = g.store.TopK(question, g.shots)
	}
	system := fmt.Sprintf(generationSystemPrompt, g.clubName)
	prompt := buildGenerationPrompt(question, conversation, schema, shots)

	raw, err := g.client.CompleteWithSystem(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("sqlgen: generate: %w", err)
	}
	query, err := Clean(raw)
	if err != nil {
		return "", err
	}
	g.logger.Debug("generated query", zap.String("sql", query), zap.Int("examples", len(shots)))
	return query, nil
}

// Fix asks the model to repair an invalid query given the error it produced.
func (g *Generator) Fix(ctx context.Context, question, schema, invalidSQL, errText string) (string, error) {
	raw, err := g.client.CompleteWithSystem(ctx, fixingSystemPrompt,
		buildFixPrompt(question, schema, invalidSQL, errText))
	if err != nil {
		return "", fmt.Errorf("sqlgen: fix: %w", err)
	}
	query, err := Clean(raw)
	if err != nil {
		return "", err
	}
	g.logger.Debug("fixed query", zap.String("sql", query))
	return query, nil
}

// Clean normalizes raw model output into a single-line SQL string: markdown
// fences are stripped, newlines collapsed, and anything that is not a SELECT
// statement rejected.
func Clean(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```sqlite")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))

	if s == "" || !strings.HasPrefix(strings.ToUpper(s), "SELECT") {
		return "", fmt.Errorf("%w: %q", ErrNotReadOnly, truncateForLog(s))
	}
	return s, nil
}

func truncateForLog(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
