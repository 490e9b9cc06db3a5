// Package services contains the server-side business logic: the note store,
// the NFT store, the marketplace settlement protocol, the key-release
// gateway, profiles, and process-wide tunables.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"notemint/internal/common"
	"notemint/internal/server/access"
	"notemint/internal/server/config"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
	"notemint/internal/server/repositories/settings"
)

// DefaultMaxNoteSize is the ceiling applied before an administrator tunes it.
const DefaultMaxNoteSize = 2048

// safeHeadroomDivisor maps storage headroom to the largest ceiling an
// administrator may set: with the default 64 MiB headroom the bound is 1 MiB.
const safeHeadroomDivisor = 64

// LimitsService owns the dynamic note size ceiling.
type LimitsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewLimitsService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *LimitsService {
	return &LimitsService{db: db, repomanager: m, config: cfg}
}

// MaxNoteSize returns the current ceiling in bytes. A missing setting decodes
// as the default, so old deployments keep working after the tunable appeared.
func (s *LimitsService) MaxNoteSize(ctx context.Context) (int, error) {
	repo := s.repomanager.Settings(s.db)

	value, err := repo.Get(ctx, settings.KeyMaxNoteSize)
	if err != nil {
		if err == common.ErrorNotFound {
			return DefaultMaxNoteSize, nil
		}
		return 0, err
	}

	size, err := strconv.Atoi(value)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("%w: corrupt %s setting %q", common.ErrFatalStorage, settings.KeyMaxNoteSize, value)
	}
	return size, nil
}

// SafeMaxNoteSize is the upper bound for the ceiling, derived from the
// configured persistent storage headroom.
func (s *LimitsService) SafeMaxNoteSize() int {
	return int(s.config.StorageHeadroomBytes / safeHeadroomDivisor)
}

// SetMaxNoteSize changes the ceiling. Only administrators may call it, and
// the new value must stay within the safe bound.
func (s *LimitsService) SetMaxNoteSize(ctx context.Context, caller models.Principal, size int) error {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return err
	}
	if !access.IsAdmin(caller, s.config.AdminPrincipals) {
		return fmt.Errorf("%w: only administrators can set note size limits", common.ErrorForbidden)
	}
	if size <= 0 {
		return fmt.Errorf("%w: note size limit must be positive", common.ErrorValidation)
	}
	if safe := s.SafeMaxNoteSize(); size > safe {
		return fmt.Errorf("%w: note size limit %d exceeds safe maximum %d", common.ErrorValidation, size, safe)
	}

	return s.repomanager.Settings(s.db).Set(ctx, settings.KeyMaxNoteSize, strconv.Itoa(size))
}
