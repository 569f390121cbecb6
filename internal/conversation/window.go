package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Defaults for the context window.
const (
	DefaultRecentWindow       = 15
	DefaultOlderCharThreshold = 3000
)

// clarificationText is the synthetic message injected when the recent window
// is drowning in errors, to break the loop and steer the model toward asking
// the user for a rephrase.
const clarificationText = "Multiple errors have occurred in a row. Ask the user to rephrase or clarify their question."

// summaryInstruction is the fixed instruction used for history summarization.
const summaryInstruction = `You are an expert at summarizing conversation histories. Condense the following messages into a brief, neutral summary that captures the key topics, decisions, and entities discussed. If there were repeated errors, summarize them as a single line. Retain essential information that would provide context for a continuing conversation.
Here is the conversation history to summarize:
`

// Completer is the summarization capability the window manager depends on.
// The LLM client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Window bounds a growing message history to what the model should see.
type Window struct {
	summarizer         Completer
	recentWindow       int
	olderCharThreshold int
	logger             *zap.Logger
}

// NewWindow creates a window manager. recentWindow and olderCharThreshold
// fall back to the defaults when non-positive.
func NewWindow(summarizer Completer, recentWindow, olderCharThreshold int, logger *zap.Logger) *Window {
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	if olderCharThreshold <= 0 {
		olderCharThreshold = DefaultOlderCharThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{
		summarizer:         summarizer,
		recentWindow:       recentWindow,
		olderCharThreshold: olderCharThreshold,
		logger:             logger,
	}
}

// Prepare shapes the full history into a bounded context. Retained messages
// keep their relative order; a summary or clarification message, if present,
// precedes all others. The single optional summarization call is the only
// side effect.
func (w *Window) Prepare(ctx context.Context, full []Message) []Message {
	if len(full) == 0 {
		return nil
	}

	recent := full
	var older []Message
	if len(full) > w.recentWindow {
		older = full[:len(full)-w.recentWindow]
		recent = full[len(full)-w.recentWindow:]
	}

	// Loop detection: a recent window that is nearly all errors means the
	// repair cycle is thrashing.
	errorCount := 0
	for _, m := range recent {
		if m.IsError() {
			errorCount++
		}
	}
	clarify := errorCount >= w.recentWindow-1
	if clarify {
		w.logger.Warn("error loop detected in recent window",
			zap.Int("errors", errorCount), zap.Int("window", w.recentWindow))
		if len(recent) > w.recentWindow-1 {
			recent = recent[len(recent)-(w.recentWindow-1):]
		}
	}

	olderChars := 0
	for _, m := range older {
		olderChars += len(m.Content)
	}

	if len(older) > 0 && olderChars > w.olderCharThreshold {
		summary, err := w.summarize(ctx, older)
		if err != nil {
			// Fall back to truncation: drop the older segment entirely.
			w.logger.Warn("history summarization failed, truncating", zap.Error(err))
			return prepend(clarify, recent)
		}
		out := make([]Message, 0, len(recent)+1)
		out = append(out, Message{Role: RoleSystem, Content: summary, Tag: TagSummary})
		return append(out, recent...)
	}

	out := prepend(clarify, nil)
	out = append(out, older...)
	return append(out, recent...)
}

func prepend(clarify bool, recent []Message) []Message {
	var out []Message
	if clarify {
		out = append(out, Message{Role: RoleSystem, Content: clarificationText, Tag: TagClarifyLoop})
	}
	return append(out, recent...)
}

// summarize collapses error runs in the older segment and asks the
// summarization capability for a condensed rendition.
func (w *Window) summarize(ctx context.Context, older []Message) (string, error) {
	if w.summarizer == nil {
		return "", fmt.Errorf("no summarizer configured")
	}

	collapsed := collapseErrorRuns(older)
	var sb strings.Builder
	sb.WriteString(summaryInstruction)
	for _, m := range collapsed {
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}

	summary, err := w.summarizer.Complete(ctx, sb.String())
	if err != nil {
		return "", fmt.Errorf("summarize history: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// collapseErrorRuns replaces consecutive runs of error-tagged messages with a
// single placeholder line so repeated failures do not dominate the summary.
func collapseErrorRuns(msgs []Message) []Message {
	var out []Message
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		noun := "errors"
		if run == 1 {
			noun = "error"
		}
		out = append(out, Message{
			Role:    RoleSystem,
			Content: fmt.Sprintf("(%d %s omitted)", run, noun),
			Tag:     TagErrorRun,
		})
		run = 0
	}
	for _, m := range msgs {
		if m.IsError() {
			run++
			continue
		}
		flush()
		out = append(out, m)
	}
	flush()
	return out
}
