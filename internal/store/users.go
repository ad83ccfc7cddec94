package store

import (
	"context"
	"encoding/json"
	"time"

	"jeopardy-trainer-go/internal/models"
)

const userColumns = `id, username, email, password_hash, role, approved, approved_at,
       game_type_filters, created_at, updated_at, last_login_at`

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, role, approved, game_type_filters, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.Approved,
		[]byte(user.GameTypeFilters), user.CreatedAt, user.UpdatedAt)
	return duplicate(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return user, notFound(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return user, notFound(err)
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, userID)
	return err
}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
SELECT `+userColumns+`
FROM users
ORDER BY approved ASC, created_at DESC
`)
	return users, err
}

func (s *Store) ApproveUser(ctx context.Context, userID string, at time.Time) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
UPDATE users
SET approved = TRUE, approved_at = COALESCE(approved_at, $1), updated_at = $1
WHERE id = $2
RETURNING `+userColumns, at, userID)
	return user, notFound(err)
}

func (s *Store) PromoteAdmin(ctx context.Context, email string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE users
SET role = 'admin', approved = TRUE, approved_at = COALESCE(approved_at, $1), updated_at = $1
WHERE lower(email) = lower($2)
`, at, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) SetGameTypeFilters(ctx context.Context, userID string, filters json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET game_type_filters = $1, updated_at = now() WHERE id = $2
`, []byte(filters), userID)
	return affected(res, err, ErrNotFound)
}

func (s *Store) CreateSession(ctx context.Context, session models.AuthSession) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO auth_sessions (session_token, user_id, expires_at, created_at)
VALUES ($1,$2,$3,$4)
`, session.SessionToken, session.UserID, session.ExpiresAt, session.CreatedAt)
	return err
}

func (s *Store) Session(ctx context.Context, token string) (models.AuthSession, error) {
	var session models.AuthSession
	err := s.db.GetContext(ctx, &session, `
SELECT session_token, user_id, expires_at, created_at FROM auth_sessions WHERE session_token = $1
`, token)
	return session, notFound(err)
}

func (s *Store) LatestSession(ctx context.Context, userID string, now time.Time) (models.AuthSession, error) {
	var session models.AuthSession
	err := s.db.GetContext(ctx, &session, `
SELECT session_token, user_id, expires_at, created_at
FROM auth_sessions
WHERE user_id = $1 AND expires_at > $2
ORDER BY expires_at DESC
LIMIT 1
`, userID, now)
	return session, notFound(err)
}

func (s *Store) ExtendSession(ctx context.Context, token string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE auth_sessions SET expires_at = $1 WHERE session_token = $2`, expiresAt, token)
	return affected(res, err, ErrNotFound)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE session_token = $1`, token)
	return affected(res, err, ErrNotFound)
}

// PurgeExpiredSessions removes sessions that ended before now.
func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
