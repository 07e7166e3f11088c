package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MikeSquared-Agency/compass/internal/anthropic"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
)

type fakeGenerator struct {
	content  string
	err      error
	system   string
	messages []anthropic.Message
	calls    int
}

func (f *fakeGenerator) Complete(_ context.Context, system string, messages []anthropic.Message, _ int) (string, error) {
	f.calls++
	f.system = system
	f.messages = messages
	return f.content, f.err
}

func newCoach(t *testing.T, gen Generator, opts ...Option) *Coach {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ext, err := extractor.New(logger)
	if err != nil {
		t.Fatalf("extractor.New: %v", err)
	}
	return New(gen, ext, 500, logger, opts...)
}

func TestRespond_Generated(t *testing.T) {
	gen := &fakeGenerator{content: "It sounds like you have a passion for music and art. What draws you in?"}
	c := newCoach(t, gen)

	reply := c.Respond(context.Background(), model.ModulePassions, nil, "I play guitar every day", model.InsightsSummary{})

	if reply.Fallback {
		t.Fatal("expected generated reply")
	}
	if reply.Content != gen.content {
		t.Errorf("content = %q", reply.Content)
	}
	wantInsights := []model.Candidate{{Kind: model.KindPassions, Text: "music and art"}}
	if diff := cmp.Diff(wantInsights, reply.Insights); diff != "" {
		t.Errorf("insights mismatch (-want +got):\n%s", diff)
	}
	if len(reply.Suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(reply.Suggestions))
	}
	item := reply.Suggestions[0].Items[0]
	if item.Platform != "Coursera" || item.URL != "https://coursera.org/search?query=music+and+art" {
		t.Errorf("item = %+v", item)
	}
	if !strings.Contains(gen.system, "Current Module: passions") {
		t.Errorf("system prompt missing module: %q", gen.system)
	}
}

func TestRespond_FallbackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	c := newCoach(t, gen, WithPicker(func(n int) int { return n - 1 }))

	reply := c.Respond(context.Background(), model.ModuleCareer, nil, "I want to be a pilot", model.InsightsSummary{})

	if !reply.Fallback {
		t.Fatal("expected fallback")
	}
	responses := FallbackResponses(model.ModuleCareer)
	if reply.Content != responses[len(responses)-1] {
		t.Errorf("content = %q, want %q", reply.Content, responses[len(responses)-1])
	}
	if reply.Insights == nil || len(reply.Insights) != 0 {
		t.Errorf("fallback insights = %v, want empty", reply.Insights)
	}
}

func TestRespond_FallbackOnBlankCompletion(t *testing.T) {
	c := newCoach(t, &fakeGenerator{content: "  \n"}, WithPicker(func(int) int { return 0 }))

	reply := c.Respond(context.Background(), model.ModuleGoals, nil, "hi", model.InsightsSummary{})
	if !reply.Fallback || reply.Content != FallbackResponses(model.ModuleGoals)[0] {
		t.Errorf("reply = %+v", reply)
	}
}

func TestRespond_NilGenerator(t *testing.T) {
	c := newCoach(t, nil, WithPicker(func(int) int { return 1 }))

	reply := c.Respond(context.Background(), model.ModuleGeneral, nil, "hello", model.InsightsSummary{})
	if !reply.Fallback {
		t.Fatal("expected fallback")
	}
	if reply.Content != genericFallbacks[1] {
		t.Errorf("content = %q, want generic reply", reply.Content)
	}
}

func TestFallback_OutOfRangePick(t *testing.T) {
	c := newCoach(t, nil, WithPicker(func(n int) int { return n + 5 }))
	if got := c.Fallback(model.ModuleMoney).Content; got != FallbackResponses(model.ModuleMoney)[0] {
		t.Errorf("content = %q", got)
	}
}

func TestFallbackCatalogue(t *testing.T) {
	for _, m := range model.Modules {
		if got := len(FallbackResponses(m)); got != 3 {
			t.Errorf("%s: %d fallback responses, want 3", m, got)
		}
	}
}

func TestSuggestions(t *testing.T) {
	skills := []model.Candidate{{Kind: model.KindSkills, Text: "data analysis"}}

	got := Suggestions(model.ModuleUpskill, skills)
	if len(got) != 1 || got[0].Items[0].URL != "https://udemy.com/search/?q=data+analysis" {
		t.Errorf("upskill suggestions = %+v", got)
	}
	if got := Suggestions(model.ModuleCareer, skills); len(got) != 0 {
		t.Errorf("career suggestions = %+v, want none", got)
	}
	if got := Suggestions(model.ModulePassions, nil); got == nil || len(got) != 0 {
		t.Errorf("empty passions suggestions = %v", got)
	}
}

func TestBuildMessages(t *testing.T) {
	history := []model.Message{
		{Sender: model.SenderAssistant, Content: "Welcome!"},
		{Sender: model.SenderUser, Content: "I like maps"},
		{Sender: model.SenderAssistant, Content: "Tell me more"},
		{Sender: model.SenderUser, Content: "and hiking"},
	}

	got := buildMessages(history, "also travel")
	want := []anthropic.Message{
		{Role: "user", Content: "I like maps"},
		{Role: "assistant", Content: "Tell me more"},
		{Role: "user", Content: "and hiking\n\nalso travel"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMessages_TruncatesHistory(t *testing.T) {
	var history []model.Message
	for i := 0; i < 30; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAssistant
		}
		history = append(history, model.Message{Sender: sender, Content: "m"})
	}

	got := buildMessages(history, "now")
	if len(got) > historyTurns+1 {
		t.Errorf("len = %d, want <= %d", len(got), historyTurns+1)
	}
	if got[0].Role != "user" || got[len(got)-1].Content != "now" {
		t.Errorf("unexpected shape: first=%+v last=%+v", got[0], got[len(got)-1])
	}
}

func TestSystemPrompt(t *testing.T) {
	user := model.InsightsSummary{Passions: []string{"music"}}

	got := SystemPrompt(model.ModuleStrengths, user)
	for _, want := range []string{`"passions":["music"]`, "Current Module: strengths", "technical and soft skills"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(SystemPrompt(model.ModuleGeneral, user), "\n\nFocus on") {
		t.Error("general prompt should carry no module section")
	}
}

func TestIsFallback(t *testing.T) {
	if !IsFallback(FallbackResponses(model.ModuleMoney)[0]) {
		t.Error("catalogue reply not recognised")
	}
	if !IsFallback(genericFallbacks[2]) {
		t.Error("generic reply not recognised")
	}
	if IsFallback("You have a passion for music.") {
		t.Error("generated reply flagged as fallback")
	}
}
