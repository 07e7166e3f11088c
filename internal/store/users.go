package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

const userColumns = `id, email, profile, insights, progress, assessment, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*model.UserProfile, error) {
	var u model.UserProfile
	err := row.Scan(&u.ID, &u.Email, &u.Profile, &u.Insights, &u.Progress, &u.Assessment, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// EnsureUser returns the user with id, creating an empty active record on first sight.
func (s *Store) EnsureUser(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, profile, insights, progress, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, $5, $5)
		ON CONFLICT (id) DO NOTHING`,
		id, model.Profile{Interests: []string{}, Goals: []string{}}, model.Insights{}, model.Progress{LastActive: now}, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser runs fn against the locked user row and writes the result back
// in the same transaction, so concurrent updates to one user serialize.
// Returning an error from fn aborts the update.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, fn func(*model.UserProfile) error) (*model.UserProfile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := lockUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := saveUser(ctx, tx, u); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

func lockUser(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.UserProfile, error) {
	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func saveUser(ctx context.Context, tx pgx.Tx, u *model.UserProfile) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET email = $2, profile = $3, insights = $4, progress = $5, assessment = $6, is_active = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, u.Profile, u.Insights, u.Progress, u.Assessment, u.IsActive, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ListCandidates returns up to limit active users other than exclude, oldest first.
func (s *Store) ListCandidates(ctx context.Context, exclude uuid.UUID, limit int) ([]*model.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active AND id <> $1
		ORDER BY created_at
		LIMIT $2`,
		exclude, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var users []*model.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// searchArray matches when the JSONB array at col has an element like $2.
// Columns holding JSON null instead of an array match nothing.
func searchArray(col string) string {
	return `EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(
				CASE WHEN jsonb_typeof(` + col + `) = 'array' THEN ` + col + ` ELSE '[]'::jsonb END
			) AS v
			WHERE v ILIKE $2)`
}

// SearchUsers returns up to limit active users other than exclude whose name,
// current job, interests or skills contain query, case-insensitively, oldest
// first. The whole table is searched.
func (s *Store) SearchUsers(ctx context.Context, exclude uuid.UUID, query string, limit int) ([]*model.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active AND id <> $1
		  AND (profile->>'name' ILIKE $2
		    OR profile->>'current_job' ILIKE $2
		    OR `+searchArray("profile->'interests'")+`
		    OR `+searchArray("insights->'skills'")+`)
		ORDER BY created_at
		LIMIT $3`,
		exclude, likePattern(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []*model.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// likePattern wraps q for a substring ILIKE, escaping LIKE metacharacters.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// ListUserIDs returns every user id, oldest first.
func (s *Store) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
