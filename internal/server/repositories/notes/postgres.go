package notes

import (
	"context"
	"database/sql"
	"fmt"

	"notemint/internal/common"
	"notemint/internal/dbx"
	"notemint/internal/server/models"
)

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) error {
	query := `INSERT INTO notes (id, owner, encrypted) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, int64(note.ID), string(note.Owner), note.Encrypted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// selectNotes runs a query expected to yield note rows LEFT JOINed with their
// share rows (id, owner, encrypted, grantee, level) ordered by id, and folds
// them into Note values. A note without grants keeps empty sets, which is
// also how rows written before edit-sharing existed decode.
func (r *PostgresRepository) selectNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	var current *models.Note

	for rows.Next() {
		var (
			id        int64
			owner     string
			encrypted string
			grantee   sql.NullString
			level     sql.NullString
		)
		if err := rows.Scan(&id, &owner, &encrypted, &grantee, &level); err != nil {
			return nil, err
		}

		if current == nil || current.ID != uint64(id) {
			current = &models.Note{
				ID:        uint64(id),
				Owner:     models.Principal(owner),
				Encrypted: encrypted,
			}
			result = append(result, current)
		}

		if grantee.Valid {
			switch models.ShareLevel(level.String) {
			case models.ShareRead:
				current.SharedRead = append(current.SharedRead, models.Principal(grantee.String))
			case models.ShareEdit:
				current.SharedEdit = append(current.SharedEdit, models.Principal(grantee.String))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint64) (*models.Note, error) {
	query := `
		SELECT n.id, n.owner, n.encrypted, s.grantee, s.level
		FROM notes n
		LEFT JOIN note_shares s ON s.note_id = n.id
		WHERE n.id = $1
		ORDER BY n.id
	`
	found, err := r.selectNotes(ctx, query, int64(id))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

func (r *PostgresRepository) SelectAccessible(ctx context.Context, p models.Principal) ([]*models.Note, error) {
	query := `
		SELECT n.id, n.owner, n.encrypted, s.grantee, s.level
		FROM notes n
		LEFT JOIN note_shares s ON s.note_id = n.id
		WHERE n.owner = $1
		   OR EXISTS (SELECT 1 FROM note_shares g WHERE g.note_id = n.id AND g.grantee = $1)
		ORDER BY n.id
	`
	return r.selectNotes(ctx, query, string(p))
}

func (r *PostgresRepository) SelectOwned(ctx context.Context, p models.Principal) ([]*models.Note, error) {
	query := `
		SELECT n.id, n.owner, n.encrypted, s.grantee, s.level
		FROM notes n
		LEFT JOIN note_shares s ON s.note_id = n.id
		WHERE n.owner = $1
		ORDER BY n.id
	`
	return r.selectNotes(ctx, query, string(p))
}

func (r *PostgresRepository) SelectSharedWith(ctx context.Context, p models.Principal) ([]*models.Note, error) {
	query := `
		SELECT n.id, n.owner, n.encrypted, s.grantee, s.level
		FROM notes n
		LEFT JOIN note_shares s ON s.note_id = n.id
		WHERE n.owner <> $1
		  AND EXISTS (SELECT 1 FROM note_shares g WHERE g.note_id = n.id AND g.grantee = $1)
		ORDER BY n.id
	`
	return r.selectNotes(ctx, query, string(p))
}

func (r *PostgresRepository) CountAccessible(ctx context.Context, p models.Principal) (int64, error) {
	query := `
		SELECT count(*)
		FROM notes n
		WHERE n.owner = $1
		   OR EXISTS (SELECT 1 FROM note_shares g WHERE g.note_id = n.id AND g.grantee = $1)
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(p)).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id uint64, encrypted string) error {
	query := `UPDATE notes SET encrypted = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, int64(id), encrypted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint64) error {
	query := `DELETE FROM notes WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// AddShare is idempotent: granting an already-granted permission is a no-op.
func (r *PostgresRepository) AddShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error {
	query := `
		INSERT INTO note_shares (note_id, grantee, level)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, int64(id), string(grantee), string(level))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveShare is idempotent: revoking an absent permission is a no-op.
func (r *PostgresRepository) RemoveShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error {
	query := `DELETE FROM note_shares WHERE note_id = $1 AND grantee = $2 AND level = $3`

	_, err := r.db.ExecContext(ctx, query, int64(id), string(grantee), string(level))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// TransferOwnership flips the owner and drops every grant. A change of
// ownership revokes all prior sharing.
func (r *PostgresRepository) TransferOwnership(ctx context.Context, id uint64, newOwner models.Principal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET owner = $2 WHERE id = $1`, int64(id), string(newOwner))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM note_shares WHERE note_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
