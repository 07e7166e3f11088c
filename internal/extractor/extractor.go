// Package extractor turns chat text into insight candidates using a small,
// fixed table of case-insensitive patterns.
package extractor

import (
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

type Extractor struct {
	table  *Table
	logger *slog.Logger
}

// New builds an extractor over the built-in pattern table.
func New(logger *slog.Logger) (*Extractor, error) {
	table, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewWithTable(table, logger), nil
}

// NewWithTable builds an extractor over a caller-supplied table.
func NewWithTable(table *Table, logger *slog.Logger) *Extractor {
	logger.Debug("extraction table loaded",
		"modules", len(table.Modules),
		"always", len(table.Always),
	)
	return &Extractor{table: table, logger: logger}
}

// Extract returns the insight candidates found in text. The module's own rule
// runs first, then the module-independent rules. Captured text is kept as
// written apart from trimming; it is never lowercased.
func (e *Extractor) Extract(module model.Module, text string) []model.Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []model.Candidate
	if rule, ok := e.table.Modules[module]; ok {
		for _, c := range rule.Match(text) {
			out = append(out, model.Candidate{Kind: rule.Kind, Text: c})
		}
	}
	for _, rule := range e.table.Always {
		for _, c := range rule.Match(text) {
			out = append(out, model.Candidate{Kind: rule.Kind, Text: c})
		}
	}
	return out
}

// Recommendations returns the assistant messages that recommend or suggest something.
func Recommendations(messages []model.Message) []string {
	var out []string
	for _, m := range messages {
		if m.Sender != model.SenderAssistant {
			continue
		}
		lower := strings.ToLower(m.Content)
		if strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest") {
			out = append(out, m.Content)
		}
	}
	return out
}

// trimCapture strips surrounding whitespace and trailing clause punctuation.
// Sentence terminators never reach here because the patterns stop before them.
func trimCapture(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",;:")
	return strings.TrimSpace(s)
}
