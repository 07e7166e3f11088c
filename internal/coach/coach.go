// Package coach produces conversational replies for a chat module, falling
// back to a fixed catalogue when text generation is unavailable.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"

	"github.com/MikeSquared-Agency/compass/internal/anthropic"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
)

// historyTurns bounds how much of the session is replayed to the model.
const historyTurns = 10

// Generator produces text from a system prompt and a conversation.
type Generator interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

// Picker returns a uniform integer in [0, n).
type Picker func(n int) int

type Coach struct {
	llm       Generator
	extractor *extractor.Extractor
	maxTokens int
	pick      Picker
	logger    *slog.Logger
}

// Option configures a Coach.
type Option func(*Coach)

// WithPicker replaces the random source used to choose fallback replies.
func WithPicker(p Picker) Option {
	return func(c *Coach) { c.pick = p }
}

// New builds a coach. llm may be nil, in which case every reply is a fallback.
func New(llm Generator, ext *extractor.Extractor, maxTokens int, logger *slog.Logger, opts ...Option) *Coach {
	c := &Coach{
		llm:       llm,
		extractor: ext,
		maxTokens: maxTokens,
		pick:      rand.Intn,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SuggestionItem is a single learning resource.
type SuggestionItem struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Suggestion is a titled group of resources derived from reply insights.
type Suggestion struct {
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Items       []SuggestionItem `json:"items"`
}

// Reply is the coach's answer to one user turn.
type Reply struct {
	Content     string            `json:"content"`
	Insights    []model.Candidate `json:"insights"`
	Suggestions []Suggestion      `json:"suggestions"`
	Fallback    bool              `json:"fallback"`
}

// Respond generates a reply to message in module. history is the session so
// far, oldest first, excluding message itself. Generation failures never
// surface: the reply falls back to the fixed catalogue with no insights.
func (c *Coach) Respond(ctx context.Context, module model.Module, history []model.Message, message string, user model.InsightsSummary) Reply {
	if c.llm == nil {
		return c.Fallback(module)
	}

	content, err := c.llm.Complete(ctx, SystemPrompt(module, user), buildMessages(history, message), c.maxTokens)
	if err == nil && strings.TrimSpace(content) == "" {
		err = fmt.Errorf("blank completion")
	}
	if err != nil {
		c.logger.Warn("text generation failed, using fallback", "module", module, "error", err)
		return c.Fallback(module)
	}

	insights := c.extractor.Extract(module, content)
	return Reply{
		Content:     content,
		Insights:    insights,
		Suggestions: Suggestions(module, insights),
	}
}

// Fallback picks one fixed reply for module uniformly at random.
func (c *Coach) Fallback(module model.Module) Reply {
	responses := FallbackResponses(module)
	i := c.pick(len(responses))
	if i < 0 || i >= len(responses) {
		i = 0
	}
	return Reply{
		Content:     responses[i],
		Insights:    []model.Candidate{},
		Suggestions: []Suggestion{},
		Fallback:    true,
	}
}

// Suggestions turns reply insights into resource suggestions for the
// passions and upskill modules.
func Suggestions(module model.Module, insights []model.Candidate) []Suggestion {
	out := []Suggestion{}
	byKind := model.GroupCandidates(insights)

	switch module {
	case model.ModulePassions:
		if passions := byKind[model.KindPassions]; len(passions) > 0 {
			items := make([]SuggestionItem, 0, len(passions))
			for _, p := range passions {
				items = append(items, SuggestionItem{
					Name:     "Introduction to " + p,
					Platform: "Coursera",
					URL:      "https://coursera.org/search?query=" + url.QueryEscape(p),
				})
			}
			out = append(out, Suggestion{
				Type:        "course",
				Title:       "Explore Your Passions",
				Description: "Based on your interests, here are some courses to consider",
				Items:       items,
			})
		}
	case model.ModuleUpskill:
		if skills := byKind[model.KindSkills]; len(skills) > 0 {
			items := make([]SuggestionItem, 0, len(skills))
			for _, s := range skills {
				items = append(items, SuggestionItem{
					Name:     s + " Mastery Course",
					Platform: "Udemy",
					URL:      "https://udemy.com/search/?q=" + url.QueryEscape(s),
				})
			}
			out = append(out, Suggestion{
				Type:        "resource",
				Title:       "Skill Development Resources",
				Description: "Here are some resources to help you develop your skills",
				Items:       items,
			})
		}
	}
	return out
}

// buildMessages replays the tail of the session as alternating user/assistant
// turns starting with a user turn, then appends message.
func buildMessages(history []model.Message, message string) []anthropic.Message {
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}

	var out []anthropic.Message
	add := func(role, content string) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + content
			return
		}
		out = append(out, anthropic.Message{Role: role, Content: content})
	}

	for _, m := range history {
		role := "user"
		if m.Sender == model.SenderAssistant {
			role = "assistant"
		}
		if len(out) == 0 && role != "user" {
			continue
		}
		add(role, m.Content)
	}
	add("user", message)
	return out
}
