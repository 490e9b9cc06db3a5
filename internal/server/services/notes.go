package services

import (
	"context"
	"database/sql"
	"fmt"

	"notemint/internal/common"
	"notemint/internal/server/access"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
)

// NoteService is the access-controlled note store.
//
// Authorization policy: reads of notes the caller cannot see fail with
// ErrorNotFound, never ErrorForbidden, so the existence of other people's
// notes is not disclosed. Mutations distinguish the two, since an editor
// already knows the note exists.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limits      *LimitsService
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, limits *LimitsService) *NoteService {
	return &NoteService{db: db, repomanager: m, limits: limits}
}

func (s *NoteService) checkSize(ctx context.Context, encrypted string) error {
	max, err := s.limits.MaxNoteSize(ctx)
	if err != nil {
		return err
	}
	if len(encrypted) > max {
		return &common.SizeExceededError{Actual: len(encrypted), Limit: max}
	}
	return nil
}

// Create stores a new encrypted note owned by the caller and returns its id.
func (s *NoteService) Create(ctx context.Context, caller models.Principal, encrypted string) (uint64, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return 0, err
	}
	if err := s.checkSize(ctx, encrypted); err != nil {
		return 0, err
	}

	id, err := s.repomanager.IDs(s.db).NextID(ctx)
	if err != nil {
		return 0, err
	}

	note := &models.Note{ID: id, Owner: caller, Encrypted: encrypted}
	if err := s.repomanager.Notes(s.db).Create(ctx, note); err != nil {
		return 0, err
	}
	return id, nil
}

// ReadAllAccessible returns every note the caller owns or has been granted.
func (s *NoteService) ReadAllAccessible(ctx context.Context, caller models.Principal) ([]*models.Note, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).SelectAccessible(ctx, caller)
}

// MyNotes returns only the notes the caller owns.
func (s *NoteService) MyNotes(ctx context.Context, caller models.Principal) ([]*models.Note, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).SelectOwned(ctx, caller)
}

// SharedNotes returns the notes shared with the caller by others.
func (s *NoteService) SharedNotes(ctx context.Context, caller models.Principal) ([]*models.Note, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).SelectSharedWith(ctx, caller)
}

// NoteCount returns the number of notes the caller can read.
func (s *NoteService) NoteCount(ctx context.Context, caller models.Principal) (int64, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return 0, err
	}
	return s.repomanager.Notes(s.db).CountAccessible(ctx, caller)
}

// Get returns the note if the caller can read it, ErrorNotFound otherwise.
func (s *NoteService) Get(ctx context.Context, caller models.Principal, id uint64) (*models.Note, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}

	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.CanRead(caller) {
		return nil, common.ErrorNotFound
	}
	return note, nil
}

// Update replaces the note's ciphertext. Requires edit permission.
func (s *NoteService) Update(ctx context.Context, caller models.Principal, id uint64, encrypted string) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}
	if err := s.checkSize(ctx, encrypted); err != nil {
		return err
	}

	repo := s.repomanager.Notes(s.db)
	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireEdit(note, caller); err != nil {
		return fmt.Errorf("%w: not authorized to update this note", err)
	}

	return repo.UpdateContent(ctx, id, encrypted)
}

// Delete removes the note. Only the owner may delete, and a note referenced
// by a minted NFT cannot be deleted at all: the NFT's integrity hash and
// pointer would dangle.
func (s *NoteService) Delete(ctx context.Context, caller models.Principal, id uint64) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}

	repo := s.repomanager.Notes(s.db)
	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(note.Owner, caller); err != nil {
		return fmt.Errorf("%w: only owner can delete", err)
	}

	minted, err := s.repomanager.Nfts(s.db).ExistsByNoteID(ctx, id)
	if err != nil {
		return err
	}
	if minted {
		return common.ErrNoteHasNft
	}

	return repo.Delete(ctx, id)
}

// Share grants read or edit permission to grantee. Granting an
// already-granted permission is a no-op.
func (s *NoteService) Share(ctx context.Context, caller models.Principal, id uint64, grantee models.Principal, level models.ShareLevel) error {
	return s.changeShare(ctx, caller, id, grantee, level, true)
}

// Unshare revokes a permission. Revoking an absent permission is a no-op.
func (s *NoteService) Unshare(ctx context.Context, caller models.Principal, id uint64, grantee models.Principal, level models.ShareLevel) error {
	return s.changeShare(ctx, caller, id, grantee, level, false)
}

func (s *NoteService) changeShare(ctx context.Context, caller models.Principal, id uint64, grantee models.Principal, level models.ShareLevel, grant bool) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}
	if !level.Valid() {
		return fmt.Errorf("%w: unknown share level %q", common.ErrorValidation, level)
	}
	if grantee.IsAnonymous() {
		return fmt.Errorf("%w: cannot share with the anonymous principal", common.ErrorValidation)
	}

	repo := s.repomanager.Notes(s.db)
	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(note.Owner, caller); err != nil {
		return fmt.Errorf("%w: only owner can share", err)
	}

	if grant {
		return repo.AddShare(ctx, id, grantee, level)
	}
	return repo.RemoveShare(ctx, id, grantee, level)
}
