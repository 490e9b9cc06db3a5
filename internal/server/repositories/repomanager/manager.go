package repomanager

import (
	"context"
	"database/sql"

	"notemint/internal/dbx"
	"notemint/internal/server/repositories/idalloc"
	"notemint/internal/server/repositories/nfts"
	"notemint/internal/server/repositories/notes"
	"notemint/internal/server/repositories/profiles"
	"notemint/internal/server/repositories/settings"
)

// RepositoryManager vends repositories bound to a DBTX, which lets services
// run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	IDs(db dbx.DBTX) idalloc.Repository
	Notes(db dbx.DBTX) notes.Repository
	Nfts(db dbx.DBTX) nfts.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Settings(db dbx.DBTX) settings.Repository
}
