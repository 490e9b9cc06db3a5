package services

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"

	"notemint/internal/common"
	"notemint/internal/server/access"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
	"notemint/internal/server/vetkd"
)

// KeysService is the key-release gateway. It authorizes the caller against
// the note store before asking the derivation service for anything, so the
// derivation backend never sees requests for notes the caller cannot read.
type KeysService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	vetkd       vetkd.Client
}

func NewKeysService(db *sql.DB, m repomanager.RepositoryManager, kc vetkd.Client) *KeysService {
	return &KeysService{db: db, repomanager: m, vetkd: kc}
}

// keyDerivationInput binds the derived key to one note and its owner: the
// note id in big-endian followed by the owner principal's text bytes. The
// owner component means a sold note yields a fresh key under its new owner.
func keyDerivationInput(noteID uint64, owner models.Principal) []byte {
	input := make([]byte, 8, 8+len(owner))
	binary.BigEndian.PutUint64(input, noteID)
	return append(input, []byte(owner)...)
}

// DeriveNoteKey releases the symmetric key for a note, encrypted to the
// caller's transport public key and hex encoded.
//
// Denials are deliberately opaque: a missing note and a note the caller
// cannot read both yield ErrKeyReleaseDenied, and no derivation request is
// issued in either case.
func (s *KeysService) DeriveNoteKey(ctx context.Context, caller models.Principal, noteID uint64, transportPublicKeyHex string) (string, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return "", err
	}

	transportKey, err := hex.DecodeString(transportPublicKeyHex)
	if err != nil {
		return "", common.ErrorValidation
	}

	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil || !note.CanRead(caller) {
		return "", common.ErrKeyReleaseDenied
	}

	encryptedKey, err := s.vetkd.DeriveKey(ctx,
		keyDerivationInput(noteID, note.Owner),
		vetkd.ContextNoteSymmetricKey,
		transportKey)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(encryptedKey), nil
}

// VerificationKey returns the hex-encoded public key under which released
// note keys verify. It is public and needs no caller authorization.
func (s *KeysService) VerificationKey(ctx context.Context) (string, error) {
	key, err := s.vetkd.PublicKey(ctx, vetkd.ContextNoteSymmetricKey)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
