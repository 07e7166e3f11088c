// Package processor runs the chat and insight pipeline: coach replies are
// mined for insights, merged into the session and the user, persisted, and
// announced on the bus.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/coach"
	"github.com/MikeSquared-Agency/compass/internal/dedup"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/hermes"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/store"
)

const (
	sourceChat     = "chat"
	sourceExternal = "external"
	sourceManual   = "manual"
)

var (
	ErrEmptyMessage  = errors.New("message content is required")
	ErrInvalidStatus = errors.New("invalid session status")
)

// Store is the persistence the pipeline needs.
type Store interface {
	EnsureUser(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fn func(*model.UserProfile) error) (*model.UserProfile, error)
	ListCandidates(ctx context.Context, exclude uuid.UUID, limit int) ([]*model.UserProfile, error)
	SearchUsers(ctx context.Context, exclude uuid.UUID, query string, limit int) ([]*model.UserProfile, error)
	CreateSession(ctx context.Context, cs *model.ChatSession) error
	GetSession(ctx context.Context, userID, id uuid.UUID) (*model.ChatSession, error)
	FindActiveSession(ctx context.Context, userID uuid.UUID, module model.Module) (*model.ChatSession, error)
	UpdateSession(ctx context.Context, userID, id uuid.UUID, fn func(*model.ChatSession) error) (*model.ChatSession, error)
	UpdateSessionWithUser(ctx context.Context, userID, id uuid.UUID, fn func(*model.ChatSession, *model.UserProfile) error) (*model.ChatSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.ChatSession, error)
}

// Responder produces coach replies.
type Responder interface {
	Respond(ctx context.Context, module model.Module, history []model.Message, message string, user model.InsightsSummary) coach.Reply
}

// Publisher emits events. A nil Publisher disables events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Processor orchestrates compass's chat and insight pipeline.
type Processor struct {
	store     Store
	coach     Responder
	extractor *extractor.Extractor
	events    Publisher
	poolLimit int
	now       func() time.Time
	logger    *slog.Logger
}

func New(s Store, c Responder, ext *extractor.Extractor, events Publisher, poolLimit int, logger *slog.Logger) *Processor {
	return &Processor{
		store:     s,
		coach:     c,
		extractor: ext,
		events:    events,
		poolLimit: poolLimit,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// MessageResult is the outcome of one user turn.
type MessageResult struct {
	Session *model.ChatSession `json:"session"`
	Reply   coach.Reply        `json:"reply"`
	Added   map[model.Kind]int `json:"added"`
}

// StartSession returns the user's active session in module, creating one
// opened by a coach welcome when none exists.
func (p *Processor) StartSession(ctx context.Context, userID uuid.UUID, module model.Module) (*model.ChatSession, error) {
	user, err := p.store.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cs, err := p.store.FindActiveSession(ctx, userID, module)
	if err == nil {
		return cs, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := p.now()
	cs = model.NewSession(userID, module, now)
	welcome := p.coach.Respond(ctx, module, nil, "Start a conversation about "+string(module), user.Summary())
	cs.AddMessage(model.SenderAssistant, welcome.Content, now)

	if err := p.store.CreateSession(ctx, cs); err != nil {
		return nil, err
	}

	p.logger.Info("session started", "user_id", userID, "session_id", cs.ID, "module", module)
	p.publish(hermes.SubjectSessionStarted, hermes.SessionStarted{
		SessionID: cs.ID,
		UserID:    userID,
		Module:    module,
		Timestamp: now,
	})
	return cs, nil
}

// SendMessage records a user turn and the coach's reply. When sessionID is
// uuid.Nil a new session is opened in module. Insights found in the reply
// are merged into the session snapshot and the user's cumulative sets.
func (p *Processor) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, module model.Module, content string) (*MessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	user, err := p.store.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var cs *model.ChatSession
	isNew := sessionID == uuid.Nil
	if isNew {
		cs = model.NewSession(userID, module, p.now())
	} else {
		cs, err = p.store.GetSession(ctx, userID, sessionID)
		if err != nil {
			return nil, err
		}
	}

	reply := p.coach.Respond(ctx, cs.Module, cs.Messages, content, user.Summary())

	appendTurn := func(cs *model.ChatSession) error {
		userAt := p.now()
		cs.AddMessage(model.SenderUser, content, userAt)
		cs.AddMessage(model.SenderAssistant, reply.Content, p.now())

		merged := dedup.MergeCandidates(cs.Insights.Insights, reply.Insights)
		cs.Insights.Insights = merged.Insights
		cs.Insights.Recommendations = dedup.Merge(cs.Insights.Recommendations, extractor.Recommendations(cs.Messages))
		return nil
	}

	if isNew {
		if err := appendTurn(cs); err != nil {
			return nil, err
		}
		if err := p.store.CreateSession(ctx, cs); err != nil {
			return nil, err
		}
		p.publish(hermes.SubjectSessionStarted, hermes.SessionStarted{
			SessionID: cs.ID,
			UserID:    userID,
			Module:    cs.Module,
			Timestamp: cs.CreatedAt,
		})
	} else {
		cs, err = p.store.UpdateSession(ctx, userID, cs.ID, appendTurn)
		if err != nil {
			return nil, err
		}
	}

	var added dedup.Result
	updated, err := p.store.UpdateUser(ctx, userID, func(u *model.UserProfile) error {
		added = dedup.MergeCandidates(u.Insights, reply.Insights)
		u.Insights = added.Insights
		u.Progress.LastActive = p.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if added.Total() > 0 {
		p.logger.Info("insights merged", "user_id", userID, "session_id", cs.ID, "module", cs.Module, "added", added.Total())
		p.publishInsights(updated, cs.Module, added, sourceChat)
	}

	return &MessageResult{Session: cs, Reply: reply, Added: added.Added}, nil
}

// SetSessionStatus moves a session to status. Completing a session counts
// towards the user's progress once; the status and the count are written
// together.
func (p *Processor) SetSessionStatus(ctx context.Context, userID, sessionID uuid.UUID, status model.Status) (*model.ChatSession, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	return p.store.UpdateSessionWithUser(ctx, userID, sessionID, func(cs *model.ChatSession, u *model.UserProfile) error {
		if cs.Status != model.StatusCompleted && status == model.StatusCompleted {
			u.Progress.SessionsCompleted++
			u.Progress.LastActive = p.now()
		}
		cs.Status = status
		return nil
	})
}

// Session fetches one of the user's sessions.
func (p *Processor) Session(ctx context.Context, userID, sessionID uuid.UUID) (*model.ChatSession, error) {
	return p.store.GetSession(ctx, userID, sessionID)
}

// Sessions lists the user's sessions, most recently updated first. A limit
// of zero returns all of them.
func (p *Processor) Sessions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.ChatSession, error) {
	return p.store.ListSessions(ctx, userID, limit)
}

func (p *Processor) publishInsights(u *model.UserProfile, module model.Module, added dedup.Result, source string) {
	p.publish(hermes.SubjectInsightsUpdated, hermes.InsightsUpdated{
		UserID:    u.ID,
		Module:    module,
		Added:     added.Added,
		Insights:  u.Insights,
		Source:    source,
		Timestamp: p.now(),
	})
}

func (p *Processor) publish(subject string, data any) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(subject, data); err != nil {
		p.logger.Warn("publish failed", "subject", subject, "error", err)
	}
}
