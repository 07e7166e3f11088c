// Package backfill re-runs insight extraction over stored chat history, for
// use after the extraction pattern table changes.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/coach"
	"github.com/MikeSquared-Agency/compass/internal/dedup"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
)

// Store is the persistence a backfill walks.
type Store interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fn func(*model.UserProfile) error) (*model.UserProfile, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.ChatSession, error)
	UpdateSession(ctx context.Context, userID, id uuid.UUID, fn func(*model.ChatSession) error) (*model.ChatSession, error)
}

// Config holds the backfill command configuration.
type Config struct {
	UserID    uuid.UUID // only this user; uuid.Nil means everyone
	Since     time.Time // skip sessions last updated before this
	DryRun    bool      // count what would change without writing
	StatePath string    // resumable progress file; empty keeps state in memory
}

// Runner orchestrates the backfill process.
type Runner struct {
	cfg       Config
	store     Store
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func NewRunner(cfg Config, s Store, ext *extractor.Extractor, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, store: s, extractor: ext, logger: logger}
}

// Run walks every selected user's sessions and merges any insights the
// current pattern table finds in coach replies. Users already recorded in
// the state file are skipped.
func (r *Runner) Run(ctx context.Context) (*State, error) {
	statePath := r.cfg.StatePath
	if r.cfg.DryRun {
		statePath = ""
	}
	state, err := LoadState(statePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	users := []uuid.UUID{r.cfg.UserID}
	if r.cfg.UserID == uuid.Nil {
		users, err = r.store.ListUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
	}
	r.logger.Info("backfill starting", "users", len(users), "dry_run", r.cfg.DryRun)

	for _, id := range users {
		if err := ctx.Err(); err != nil {
			r.logger.Info("backfill interrupted, saving state")
			_ = state.Save()
			return state, err
		}
		if state.IsProcessed(id.String()) {
			continue
		}

		if err := r.processUser(ctx, id, state); err != nil {
			r.logger.Error("backfill user failed", "user_id", id, "error", err)
			state.AddError(fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		state.MarkProcessed(id.String())
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save state", "error", err)
		}
	}

	r.logger.Info("backfill complete",
		"users", len(state.UsersProcessed),
		"sessions_scanned", state.SessionsScanned,
		"sessions_updated", state.SessionsUpdated,
		"insights_added", state.InsightsAdded,
		"errors", len(state.Errors),
	)
	return state, nil
}

func (r *Runner) processUser(ctx context.Context, userID uuid.UUID, state *State) error {
	sessions, err := r.store.ListSessions(ctx, userID, 0)
	if err != nil {
		return err
	}

	var all []model.Candidate
	for _, cs := range sessions {
		if cs.UpdatedAt.Before(r.cfg.Since) {
			continue
		}
		state.SessionsScanned++

		cands := r.replyCandidates(cs)
		if len(cands) == 0 {
			continue
		}
		all = append(all, cands...)

		if dedup.MergeCandidates(cs.Insights.Insights, cands).Total() == 0 {
			continue
		}
		state.SessionsUpdated++
		if r.cfg.DryRun {
			continue
		}
		_, err := r.store.UpdateSession(ctx, userID, cs.ID, func(cs *model.ChatSession) error {
			cs.Insights.Insights = dedup.MergeCandidates(cs.Insights.Insights, cands).Insights
			return nil
		})
		if err != nil {
			return fmt.Errorf("session %s: %w", cs.ID, err)
		}
	}

	if len(all) == 0 {
		return nil
	}

	if r.cfg.DryRun {
		u, err := r.store.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		state.InsightsAdded += dedup.MergeCandidates(u.Insights, all).Total()
		return nil
	}

	var added dedup.Result
	_, err = r.store.UpdateUser(ctx, userID, func(u *model.UserProfile) error {
		added = dedup.MergeCandidates(u.Insights, all)
		u.Insights = added.Insights
		return nil
	})
	if err != nil {
		return err
	}
	state.InsightsAdded += added.Total()
	r.logger.Info("user backfilled", "user_id", userID, "sessions", len(sessions), "added", added.Total())
	return nil
}

// replyCandidates extracts insights from the coach replies of cs. The
// opening welcome and fixed fallback replies never contribute.
func (r *Runner) replyCandidates(cs *model.ChatSession) []model.Candidate {
	var out []model.Candidate
	seenUser := false
	for _, m := range cs.Messages {
		if m.Sender == model.SenderUser {
			seenUser = true
			continue
		}
		if !seenUser || coach.IsFallback(m.Content) {
			continue
		}
		out = append(out, r.extractor.Extract(cs.Module, m.Content)...)
	}
	return out
}
