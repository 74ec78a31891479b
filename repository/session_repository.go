package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafeStorefront/models"
)

// ErrEmptyToken is returned when a session is created without a bearer token.
var ErrEmptyToken = errors.New("session token is empty")

// SessionRepository stores bearer tokens behind opaque session ids.
// Timestamps are kept as unix seconds to avoid SQLite date-format pitfalls.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create stores token under a fresh random id that expires after ttl.
func (r *SessionRepository) Create(ctx context.Context, token string, ttl time.Duration) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := r.now().Truncate(time.Second)
	s := &models.Session{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions (id, token, created_at, expires_at) VALUES (?,?,?,?)`,
		s.ID, s.Token, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get fetches a live session by id. Missing and expired sessions both yield (nil, nil).
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s models.Session
	var created, expires int64
	err := r.db.QueryRowContext(ctx, `SELECT id, token, created_at, expires_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.Token, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0)
	s.ExpiresAt = time.Unix(expires, 0)
	if s.Expired(r.now()) {
		return nil, nil
	}
	return &s, nil
}

// Delete removes a session by id. Deleting an unknown id is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpired removes every session whose expiry is at or before now
// and reports how many rows were purged.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
