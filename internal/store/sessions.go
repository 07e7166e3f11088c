package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

const sessionColumns = `id, user_id, module, messages, insights, status, message_count, last_activity, created_at, updated_at`

func scanSession(row pgx.Row) (*model.ChatSession, error) {
	var cs model.ChatSession
	err := row.Scan(&cs.ID, &cs.UserID, &cs.Module, &cs.Messages, &cs.Insights, &cs.Status, &cs.MessageCount, &cs.LastActivity, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &cs, nil
}

// CreateSession inserts a new chat session.
func (s *Store) CreateSession(ctx context.Context, cs *model.ChatSession) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cs.ID, cs.UserID, cs.Module, cs.Messages, cs.Insights, cs.Status, cs.MessageCount, cs.LastActivity, cs.CreatedAt, cs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession fetches a session owned by userID.
func (s *Store) GetSession(ctx context.Context, userID, id uuid.UUID) (*model.ChatSession, error) {
	cs, err := scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return cs, nil
}

// FindActiveSession returns the most recently updated active session for a
// user in module.
func (s *Store) FindActiveSession(ctx context.Context, userID uuid.UUID, module model.Module) (*model.ChatSession, error) {
	cs, err := scanSession(s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE user_id = $1 AND module = $2 AND status = $3
		ORDER BY updated_at DESC
		LIMIT 1`,
		userID, module, model.StatusActive,
	))
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return cs, nil
}

// UpdateSession runs fn against the locked session row and writes it back.
func (s *Store) UpdateSession(ctx context.Context, userID, id uuid.UUID, fn func(*model.ChatSession) error) (*model.ChatSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cs, err := lockSession(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(cs); err != nil {
		return nil, err
	}
	if err := saveSession(ctx, tx, cs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cs, nil
}

// UpdateSessionWithUser applies fn to one of the user's sessions and to the
// user in a single transaction. The user row is locked before the session
// row; nothing is written if fn returns an error.
func (s *Store) UpdateSessionWithUser(ctx context.Context, userID, id uuid.UUID, fn func(*model.ChatSession, *model.UserProfile) error) (*model.ChatSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	cs, err := lockSession(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(cs, u); err != nil {
		return nil, err
	}
	if err := saveSession(ctx, tx, cs); err != nil {
		return nil, err
	}
	if err := saveUser(ctx, tx, u); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cs, nil
}

func lockSession(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*model.ChatSession, error) {
	cs, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	return cs, nil
}

func saveSession(ctx context.Context, tx pgx.Tx, cs *model.ChatSession) error {
	cs.UpdatedAt = time.Now().UTC()
	_, err := tx.Exec(ctx, `
		UPDATE chat_sessions
		SET messages = $2, insights = $3, status = $4, message_count = $5, last_activity = $6, updated_at = $7
		WHERE id = $1`,
		cs.ID, cs.Messages, cs.Insights, cs.Status, cs.MessageCount, cs.LastActivity, cs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// ListSessions returns a user's sessions, most recently updated first.
// A limit of zero returns all of them.
func (s *Store) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.ChatSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT NULLIF($2::int, 0)`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.ChatSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}
