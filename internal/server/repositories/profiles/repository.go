// Package profiles persists user profiles keyed by principal.
package profiles

import (
	"context"

	"notemint/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, profile *models.UserProfile) error
	GetByPrincipal(ctx context.Context, p models.Principal) (*models.UserProfile, error)
	// UsernameTaken reports whether username (case-insensitive) belongs to a
	// principal other than exclude.
	UsernameTaken(ctx context.Context, username string, exclude models.Principal) (bool, error)
	Count(ctx context.Context) (int64, error)
}
