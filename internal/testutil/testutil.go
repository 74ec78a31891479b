package testutil

import (
	"database/sql"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"

	"cafeStorefront/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so every pooled connection sees the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT shaped like the backend's access tokens.
func GenerateJWTHS256(t *testing.T, secret string, id int64, email, authority string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":        id,
		"email":     email,
		"authority": authority,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
