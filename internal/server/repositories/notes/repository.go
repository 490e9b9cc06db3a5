// Package notes persists encrypted notes and their sharing grants.
package notes

import (
	"context"

	"notemint/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uint64) (*models.Note, error)
	SelectAccessible(ctx context.Context, p models.Principal) ([]*models.Note, error)
	SelectOwned(ctx context.Context, p models.Principal) ([]*models.Note, error)
	SelectSharedWith(ctx context.Context, p models.Principal) ([]*models.Note, error)
	CountAccessible(ctx context.Context, p models.Principal) (int64, error)
	UpdateContent(ctx context.Context, id uint64, encrypted string) error
	Delete(ctx context.Context, id uint64) error
	AddShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error
	RemoveShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error
	// TransferOwnership reassigns the note and revokes every sharing grant.
	// Used by the marketplace settlement step.
	TransferOwnership(ctx context.Context, id uint64, newOwner models.Principal) error
}
