// Package nfts persists NFT records and their listing state.
package nfts

import (
	"context"

	"notemint/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, nft *models.Nft) error
	GetByID(ctx context.Context, id uint64) (*models.Nft, error)
	SelectByOwner(ctx context.Context, owner models.Principal) ([]*models.Nft, error)
	SelectListed(ctx context.Context) ([]*models.Nft, error)
	ExistsByNoteID(ctx context.Context, noteID uint64) (bool, error)
	UpdateListing(ctx context.Context, id uint64, listed bool, priceSats *uint64) error
	UpdateOwner(ctx context.Context, id uint64, owner models.Principal) error
	// CompletePurchase flips owner and clears the listing, but only while the
	// NFT is still listed. Returns ErrPurchaseConflict when a concurrent
	// settlement got there first.
	CompletePurchase(ctx context.Context, id uint64, buyer models.Principal) error
}
