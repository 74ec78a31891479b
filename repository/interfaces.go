package repository

import (
	"context"
	"time"

	"cafeStorefront/models"
)

// SessionRepositoryI defines operations on Session entities.
type SessionRepositoryI interface {
	Create(ctx context.Context, token string, ttl time.Duration) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var _ SessionRepositoryI = (*SessionRepository)(nil)
