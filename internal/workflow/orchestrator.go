// Package workflow drives a conversational turn through an explicit state
// machine: clarify ambiguous names, generate SQL, validate it, repair it a
// bounded number of times, execute it, and format the outcome. Every turn
// ends with exactly one of a final answer, a clarification request, or an
// apology.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"matchday/internal/conversation"
	"matchday/internal/db"
	"matchday/internal/resolve"
)

// Defaults for turn control.
const (
	DefaultMaxFixAttempts = 1
	DefaultStepTimeout    = 30 * time.Second
)

// staticApology ends a failed turn when answer formatting is disabled.
const staticApology = "Sorry, ik kan deze vraag nu niet beantwoorden. Probeer het anders te formuleren."

// Database is the data access surface a turn needs.
type Database interface {
	schemaSource
	CheckSyntax(ctx context.Context, query string) (bool, string)
	Execute(ctx context.Context, query string) (*db.Result, error)
	DistinctValues(ctx context.Context, column, table string) ([]string, error)
}

// Generator produces and repairs SQL.
type Generator interface {
	Generate(ctx context.Context, question, conversation, schema string) (string, error)
	Fix(ctx context.Context, question, schema, invalidSQL, errText string) (string, error)
}

// Formatter renders results and failures as user-facing answers.
type Formatter interface {
	FormatAnswer(ctx context.Context, question string, result *db.Result) string
	FormatError(ctx context.Context, question, errText, schema string) string
}

// Options tune turn behavior.
type Options struct {
	// MaxFixAttempts bounds the SQL repair loop. Clamped to 1..3.
	MaxFixAttempts int
	// FormatOutput controls whether results pass through the answer
	// formatter or end the turn as raw rows.
	FormatOutput bool
	// StepTimeout caps each external call (model, database).
	StepTimeout time.Duration
	// SchemaTTL refreshes the cached schema description; zero caches for
	// the process lifetime.
	SchemaTTL time.Duration
}

func (o *Options) normalize() {
	if o.MaxFixAttempts < 1 {
		o.MaxFixAttempts = DefaultMaxFixAttempts
	}
	if o.MaxFixAttempts > 3 {
		o.MaxFixAttempts = 3
	}
	if o.StepTimeout <= 0 {
		o.StepTimeout = DefaultStepTimeout
	}
}

// Orchestrator sequences the steps of a turn. All collaborators are injected;
// the orchestrator owns no connections or clients itself.
type Orchestrator struct {
	database  Database
	generator Generator
	formatter Formatter
	window    *conversation.Window
	schema    *schemaCache
	opts      Options
	logger    *zap.Logger
}

func New(database Database, generator Generator, formatter Formatter, window *conversation.Window, opts Options, logger *zap.Logger) *Orchestrator {
	opts.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		database:  database,
		generator: generator,
		formatter: formatter,
		window:    window,
		schema:    newSchemaCache(database, opts.SchemaTTL),
		opts:      opts,
		logger:    logger,
	}
}

// stepResult carries a step's outcome to the next state. Exactly the fields
// for the reporting step's kind are set.
type stepResult struct {
	event   Event
	sql     string
	errText string
	rows    *db.Result
}

// Turn runs one utterance through the state machine, appending every
// intermediate and final message to the session state.
func (o *Orchestrator) Turn(ctx context.Context, state *conversation.State, utterance string) error {
	if strings.TrimSpace(utterance) == "" {
		return fmt.Errorf("workflow: empty utterance")
	}
	state.BeginTurn(utterance)

	st := StateClarify
	res := stepResult{}
	for st != StateDone && st != StateFailed {
		o.logger.Debug("turn step", zap.String("session", state.ID), zap.Stringer("state", st))
		switch st {
		case StateClarify:
			res = o.stepClarify(ctx, state, utterance)
		case StateGenerate:
			res = o.stepGenerate(ctx, state, utterance)
		case StateCheck:
			res = o.stepCheck(ctx, state, res)
		case StateFix:
			res = o.stepFix(ctx, state, utterance, res)
		case StateExecute:
			res = o.stepExecute(ctx, state, res)
		case StateFormat:
			res = o.stepFormat(ctx, state, utterance, res)
		}
		st = Transition(st, res.event, state.FixAttempts, o.opts.MaxFixAttempts)
	}

	if st == StateFailed {
		o.apologize(ctx, state, utterance, res.errText)
	}
	return nil
}

// stepClarify resolves entity names in the utterance against the database's
// authoritative lists. Ambiguity ends the turn with a clarification request.
func (o *Orchestrator) stepClarify(ctx context.Context, state *conversation.State, utterance string) stepResult {
	players, err := o.distinct(ctx, "playerName", "players")
	if err != nil {
		return o.fail(state, fmt.Sprintf("loading player names: %v", err))
	}
	clubs, err := o.distinct(ctx, "clubName", "clubs")
	if err != nil {
		return o.fail(state, fmt.Sprintf("loading club names: %v", err))
	}

	state.Remember(resolve.ResolveEntities(utterance, players, clubs))

	ambiguous := resolve.FindAmbiguous(utterance, players, clubs)
	if len(ambiguous) > 0 {
		sort.Strings(ambiguous)
		question := fmt.Sprintf(
			"Ik herken deze namen niet: %s. Kun je verduidelijken welke speler of club je bedoelt?",
			strings.Join(ambiguous, ", "))
		state.Append(conversation.RoleAgent, question, conversation.TagClarify)
		o.logger.Info("clarification requested",
			zap.String("session", state.ID), zap.Strings("names", ambiguous))
		return stepResult{event: EventClarified}
	}
	return stepResult{event: EventProceed}
}

// stepGenerate asks the model for SQL over the bounded context and schema.
func (o *Orchestrator) stepGenerate(ctx context.Context, state *conversation.State, utterance string) stepResult {
	schema, err := o.describeSchema(ctx, state)
	if err != nil {
		return o.fail(state, fmt.Sprintf("describing schema: %v", err))
	}

	canonical := Canonicalize(utterance, state.Resolved)
	bounded := o.window.Prepare(ctx, state.Messages)

	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	sql, err := o.generator.Generate(stepCtx, canonical, renderTranscript(bounded), schema)
	cancel()
	if err != nil {
		return o.fail(state, fmt.Sprintf("generating query: %v", err))
	}

	state.Append(conversation.RoleAgent, sql, conversation.TagSQLQuery)
	return stepResult{event: EventProceed, sql: sql}
}

// stepCheck validates the candidate SQL without running it.
func (o *Orchestrator) stepCheck(ctx context.Context, state *conversation.State, prev stepResult) stepResult {
	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	valid, errText := o.database.CheckSyntax(stepCtx, prev.sql)
	cancel()

	if valid {
		state.Append(conversation.RoleSystem, "query validated", conversation.TagCheckResult)
		return stepResult{event: EventValid, sql: prev.sql}
	}
	state.Append(conversation.RoleSystem, errText, conversation.TagError)
	o.logger.Info("syntax check failed",
		zap.String("session", state.ID),
		zap.Int("attempts", state.FixAttempts), zap.String("error", errText))
	return stepResult{event: EventInvalid, sql: prev.sql, errText: errText}
}

// stepFix consumes one repair attempt asking the model to correct the query.
func (o *Orchestrator) stepFix(ctx context.Context, state *conversation.State, utterance string, prev stepResult) stepResult {
	state.FixAttempts++

	schema, err := o.describeSchema(ctx, state)
	if err != nil {
		return o.fail(state, fmt.Sprintf("describing schema: %v", err))
	}

	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	sql, err := o.generator.Fix(stepCtx, utterance, schema, prev.sql, prev.errText)
	cancel()
	if err != nil {
		return o.fail(state, fmt.Sprintf("fixing query: %v", err))
	}

	state.Append(conversation.RoleAgent, sql, conversation.TagSQLQuery)
	return stepResult{event: EventProceed, sql: sql}
}

// stepExecute runs the validated SQL. Execution failures are terminal; only
// pre-execution syntax errors feed the repair loop.
func (o *Orchestrator) stepExecute(ctx context.Context, state *conversation.State, prev stepResult) stepResult {
	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	result, err := o.database.Execute(stepCtx, prev.sql)
	cancel()
	if err != nil {
		return o.fail(state, fmt.Sprintf("executing query: %v", err))
	}

	if !o.opts.FormatOutput {
		state.Append(conversation.RoleAgent, renderRawResult(result), conversation.TagResults)
		return stepResult{event: EventSkipFormat, rows: result}
	}
	state.Append(conversation.RoleSystem, renderRawResult(result), conversation.TagResults)
	return stepResult{event: EventProceed, rows: result}
}

// stepFormat renders the result set as the final persona answer. The
// formatter never fails; it degrades to an apology internally.
func (o *Orchestrator) stepFormat(ctx context.Context, state *conversation.State, utterance string, prev stepResult) stepResult {
	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	answer := o.formatter.FormatAnswer(stepCtx, utterance, prev.rows)
	cancel()

	state.Append(conversation.RoleAgent, answer, "")
	return stepResult{event: EventProceed}
}

// apologize ends a failed turn with a user-facing message that hides every
// technical detail.
func (o *Orchestrator) apologize(ctx context.Context, state *conversation.State, utterance, errText string) {
	answer := staticApology
	if o.opts.FormatOutput {
		schema, _ := o.describeSchema(ctx, state)
		stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
		answer = o.formatter.FormatError(stepCtx, utterance, errText, schema)
		cancel()
	}
	state.Append(conversation.RoleAgent, answer, "")
}

// fail records a step failure as an error-tagged message; the transition
// function routes it to the terminal handler.
func (o *Orchestrator) fail(state *conversation.State, errText string) stepResult {
	state.Append(conversation.RoleSystem, errText, conversation.TagError)
	o.logger.Warn("turn step failed", zap.String("session", state.ID), zap.String("error", errText))
	return stepResult{event: EventError, errText: errText}
}

func (o *Orchestrator) distinct(ctx context.Context, column, table string) ([]string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	defer cancel()
	return o.database.DistinctValues(stepCtx, column, table)
}

// describeSchema serves from the process-wide cache and mirrors the text into
// the session state for inspection.
func (o *Orchestrator) describeSchema(ctx context.Context, state *conversation.State) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.opts.StepTimeout)
	defer cancel()
	text, err := o.schema.get(stepCtx)
	if err != nil {
		return "", err
	}
	if state.Schema != text {
		state.Schema = text
		state.SchemaFetchedAt = time.Now()
	}
	return text, nil
}

// renderTranscript lays the bounded history out as role-prefixed lines for
// the generation prompt.
func renderTranscript(msgs []conversation.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", m.Role, m.Content)
	}
	return b.String()
}

// renderRawResult prints rows as tab-separated lines under a column header.
func renderRawResult(result *db.Result) string {
	if result == nil || len(result.Rows) == 0 {
		return "(no rows)"
	}
	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		b.WriteByte('\n')
		for i, col := range result.Columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%v", row[col])
		}
	}
	return b.String()
}
