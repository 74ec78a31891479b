package models

import "time"

// Session maps a browser cookie to the bearer token issued by the backend.
// It maps to the `sessions` table in SQLite.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
