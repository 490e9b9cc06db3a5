package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notemint/internal/common"
	"notemint/internal/server/access"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
)

// Archiver stores a ciphertext snapshot for a minted note and returns a
// pointer URI for it. Optional: a nil Archiver falls back to an internal
// note:// pointer.
type Archiver interface {
	ArchiveCiphertext(ctx context.Context, noteID uint64, ciphertext string) (string, error)
}

// NftService owns NFT records and listing state. Settlement of purchases
// lives in MarketService.
type NftService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limits      *LimitsService
	archiver    Archiver
	now         func() time.Time
}

func NewNftService(db *sql.DB, m repomanager.RepositoryManager, limits *LimitsService, archiver Archiver) *NftService {
	return &NftService{db: db, repomanager: m, limits: limits, archiver: archiver, now: time.Now}
}

func internalPointer(noteID uint64) string {
	return fmt.Sprintf("note://notemint/%d", noteID)
}

// Mint wraps a note into a new NFT. Only the note's owner can mint, and the
// note must still fit the current size ceiling (the ceiling may have been
// lowered since the note was written).
//
// A note may be minted more than once; each mint is a distinct token over
// the same underlying note.
func (s *NftService) Mint(ctx context.Context, caller models.Principal, noteID uint64,
	title, description, ciphertextHashHex string, priceSats *uint64) (uint64, error) {

	if err := access.AssertNotAnonymous(caller); err != nil {
		return 0, err
	}
	if title == "" {
		return 0, fmt.Errorf("%w: title cannot be empty", common.ErrorValidation)
	}
	if ciphertextHashHex == "" {
		return 0, fmt.Errorf("%w: ciphertext hash cannot be empty", common.ErrorValidation)
	}

	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return 0, err
	}
	if err := access.RequireOwner(note.Owner, caller); err != nil {
		return 0, fmt.Errorf("%w: only the owner can mint this note", err)
	}

	// The ceiling may have dropped since the note was written.
	max, err := s.limits.MaxNoteSize(ctx)
	if err != nil {
		return 0, err
	}
	if len(note.Encrypted) > max {
		return 0, &common.SizeExceededError{Actual: len(note.Encrypted), Limit: max}
	}

	pointer := internalPointer(noteID)
	if s.archiver != nil {
		pointer, err = s.archiver.ArchiveCiphertext(ctx, noteID, note.Encrypted)
		if err != nil {
			return 0, fmt.Errorf("snapshot archive failed: %w", err)
		}
	}

	id, err := s.repomanager.IDs(s.db).NextID(ctx)
	if err != nil {
		return 0, err
	}

	nft := &models.Nft{
		ID:                id,
		NoteID:            noteID,
		Owner:             note.Owner,
		Title:             title,
		Description:       description,
		Pointer:           pointer,
		Encrypted:         true,
		CiphertextHashHex: ciphertextHashHex,
		CreatedAt:         s.now(),
	}
	if priceSats != nil {
		nft.Listed = true
		nft.Price = priceSats
	}

	if err := s.repomanager.Nfts(s.db).Create(ctx, nft); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns NFT metadata. Metadata is public; the note content it points
// at stays protected by the note store.
func (s *NftService) Get(ctx context.Context, id uint64) (*models.Nft, error) {
	return s.repomanager.Nfts(s.db).GetByID(ctx, id)
}

// ListMine returns the NFTs owned by the caller.
func (s *NftService) ListMine(ctx context.Context, caller models.Principal) ([]*models.Nft, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}
	return s.repomanager.Nfts(s.db).SelectByOwner(ctx, caller)
}

// ListForSale returns every listed NFT.
func (s *NftService) ListForSale(ctx context.Context) ([]*models.Nft, error) {
	return s.repomanager.Nfts(s.db).SelectListed(ctx)
}

// OwnerOf returns the owner of an NFT.
func (s *NftService) OwnerOf(ctx context.Context, id uint64) (models.Principal, error) {
	nft, err := s.repomanager.Nfts(s.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return nft.Owner, nil
}

// TokensOf returns all NFT ids owned by a principal.
func (s *NftService) TokensOf(ctx context.Context, owner models.Principal) ([]uint64, error) {
	nfts, err := s.repomanager.Nfts(s.db).SelectByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(nfts))
	for _, n := range nfts {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

// UpdateListing changes the listing state. Delisting always clears the price;
// listing requires one.
func (s *NftService) UpdateListing(ctx context.Context, caller models.Principal, id uint64, listed bool, priceSats *uint64) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}

	repo := s.repomanager.Nfts(s.db)
	nft, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(nft.Owner, caller); err != nil {
		return fmt.Errorf("%w: only the owner can update the listing", err)
	}

	if !listed {
		priceSats = nil
	} else if priceSats == nil {
		return fmt.Errorf("%w: listing an NFT requires a price", common.ErrorValidation)
	}

	return repo.UpdateListing(ctx, id, listed, priceSats)
}

// Transfer hands the NFT to another principal without payment. The
// underlying note is not touched; only purchases move both together.
func (s *NftService) Transfer(ctx context.Context, caller models.Principal, id uint64, to models.Principal) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}
	if to.IsAnonymous() {
		return fmt.Errorf("%w: cannot transfer to the anonymous principal", common.ErrorValidation)
	}

	repo := s.repomanager.Nfts(s.db)
	nft, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(nft.Owner, caller); err != nil {
		return fmt.Errorf("%w: only the owner can transfer this NFT", err)
	}

	return repo.UpdateOwner(ctx, id, to)
}
