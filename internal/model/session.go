package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Status is a chat session lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// Valid reports whether s is a known session status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

// Message is one chat turn.
type Message struct {
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionInsights is the per-session snapshot of extracted insights. It is
// never folded into the user's cumulative set except through the explicit merge step.
type SessionInsights struct {
	Insights
	Recommendations []string `json:"recommendations"`
}

// ChatSession is a conversation in one module, owned by exactly one user.
type ChatSession struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Module       Module          `json:"module"`
	Messages     []Message       `json:"messages"`
	Insights     SessionInsights `json:"insights"`
	Status       Status          `json:"status"`
	MessageCount int             `json:"message_count"`
	LastActivity time.Time       `json:"last_activity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewSession returns an empty active session.
func NewSession(userID uuid.UUID, module Module, now time.Time) *ChatSession {
	return &ChatSession{
		ID:           uuid.New(),
		UserID:       userID,
		Module:       module,
		Messages:     []Message{},
		Status:       StatusActive,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddMessage appends a turn and refreshes the message count and activity time.
// Content is trimmed; blank content is ignored.
func (s *ChatSession) AddMessage(sender Sender, content string, at time.Time) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	s.Messages = append(s.Messages, Message{Sender: sender, Content: content, Timestamp: at})
	s.MessageCount = len(s.Messages)
	s.LastActivity = at
	s.UpdatedAt = at
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID           uuid.UUID       `json:"id"`
	Module       Module          `json:"module"`
	MessageCount int             `json:"message_count"`
	Status       Status          `json:"status"`
	Insights     SessionInsights `json:"insights"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
}

// Summary returns the list view of s.
func (s *ChatSession) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Module:       s.Module,
		MessageCount: s.MessageCount,
		Status:       s.Status,
		Insights:     s.Insights,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}
