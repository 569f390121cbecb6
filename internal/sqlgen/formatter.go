package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"matchday/internal/db"
	"matchday/internal/llm"
)

// Fallback texts used when the formatting model itself fails. The persona
// answers in Dutch, so the apologies do too.
const (
	apologyResults = "Sorry, ik kon de resultaten niet verwerken."
	apologyError   = "Sorry, er is een fout opgetreden bij het verwerken van je vraag."
)

// Formatter renders query results and failures as persona answers.
type Formatter struct {
	client   llm.Client
	clubName string
	logger   *zap.Logger
}

func NewFormatter(client llm.Client, clubName string, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clubName == "" {
		clubName = "Feyenoord"
	}
	return &Formatter{client: client, clubName: clubName, logger: logger}
}

// FormatAnswer turns a query result into a short first-person answer.
// A formatting failure degrades to a generic apology rather than an error,
// so the conversation always ends with something the user can read.
func (f *Formatter) FormatAnswer(ctx context.Context, question string, result *db.Result) string {
	prompt := fmt.Sprintf("Vraag: %s\n\nResultaten:\n%s", question, renderResult(result))
	answer, err := f.client.CompleteWithSystem(ctx, fmt.Sprintf(formatAnswerPrompt, f.clubName), prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		f.logger.Warn("answer formatting failed", zap.Error(err))
		return apologyResults
	}
	return strings.TrimSpace(answer)
}

// FormatError explains a failed turn without technical detail, asking for
// clarification or suggesting answerable questions based on the schema.
func (f *Formatter) FormatError(ctx context.Context, question, errText, schema string) string {
	system := fmt.Sprintf(formatAnswerPrompt, f.clubName) + formatErrorExtra
	prompt := fmt.Sprintf("Vraag: %s\n\nFoutmelding: %s\n\nDatabase-schema:\n%s", question, errText, schema)
	answer, err := f.client.CompleteWithSystem(ctx, system, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		f.logger.Warn("error formatting failed", zap.Error(err))
		return apologyError
	}
	return strings.TrimSpace(answer)
}

// renderResult lays the rows out as one line per row of column=value pairs,
// in column order.
func renderResult(result *db.Result) string {
	if result == nil || len(result.Rows) == 0 {
		return "Geen resultaten gevonden."
	}
	var b strings.Builder
	for i, row := range result.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, col := range result.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", col, row[col])
		}
	}
	return b.String()
}
