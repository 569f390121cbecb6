// Package examples supplies few-shot question/SQL pairs that enrich the
// generation prompt. The store is an optional collaborator: when it is empty
// or its file is missing, generation simply proceeds without examples.
package examples

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Example pairs a natural-language question with its reference SQL.
type Example struct {
	Question string `yaml:"question"`
	SQL      string `yaml:"sql"`
}

// Store holds the example set and ranks it against incoming questions with
// keyword-overlap scoring. Safe for concurrent use; the file watcher reloads
// the set in place.
type Store struct {
	mu       sync.RWMutex
	examples []Example
	path     string
	logger   *zap.Logger
}

// NewStore creates a store seeded with the built-in examples, merged with
// the YAML file at path when one is configured. A missing or malformed file
// degrades to the built-ins; it is never fatal.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	s.examples = defaultExamples()
	if path != "" {
		if err := s.reload(); err != nil {
			logger.Warn("example file unavailable, using built-ins",
				zap.String("path", path), zap.Error(err))
		}
	}
	return s
}

// reload replaces the example set with built-ins plus the file contents.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("examples: read %s: %w", s.path, err)
	}
	var loaded []Example
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("examples: parse %s: %w", s.path, err)
	}
	valid := loaded[:0]
	for _, ex := range loaded {
		if strings.TrimSpace(ex.Question) != "" && strings.TrimSpace(ex.SQL) != "" {
			valid = append(valid, ex)
		}
	}

	s.mu.Lock()
	s.examples = append(defaultExamples(), valid...)
	s.mu.Unlock()
	s.logger.Info("examples loaded", zap.String("path", s.path), zap.Int("count", len(valid)))
	return nil
}

// Watch reloads the example file whenever it changes, until ctx is done.
// Returns immediately when no file is configured.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("examples: start watcher: %w", err)
	}
	if err := watcher.Add(s.path); err != nil {
		watcher.Close()
		return fmt.Errorf("examples: watch %s: %w", s.path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := s.reload(); err != nil {
						s.logger.Warn("example reload failed", zap.Error(err))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("example watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Count returns the current number of examples.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.examples)
}

// TopK returns up to k examples most similar to the question, ranked by
// keyword overlap. Examples with no overlap at all are omitted.
func (s *Store) TopK(question string, k int) []Example {
	if k <= 0 {
		return nil
	}
	queryTokens := tokenize(question)
	if len(queryTokens) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		ex    Example
		score float64
	}
	ranked := make([]scored, 0, len(s.examples))
	for _, ex := range s.examples {
		if sc := overlap(queryTokens, tokenize(ex.Question)); sc > 0 {
			ranked = append(ranked, scored{ex, sc})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]Example, len(ranked))
	for i, r := range ranked {
		out[i] = r.ex
	}
	return out
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(field) > 2 { // skip stop-word length tokens
			tokens[field] = struct{}{}
		}
	}
	return tokens
}

// overlap is the Jaccard similarity of two token sets.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for t := range a {
		if _, ok := b[t]; ok {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b)-common)
}
