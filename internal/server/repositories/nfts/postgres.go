package nfts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notemint/internal/common"
	"notemint/internal/dbx"
	"notemint/internal/server/models"
)

const nftColumns = `id, note_id, owner, title, description, pointer, encrypted, ciphertext_hash_hex, listed, price_sats, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, nft *models.Nft) error {
	query := `
		INSERT INTO nfts (` + nftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(nft.ID), int64(nft.NoteID), string(nft.Owner), nft.Title, nft.Description,
		nft.Pointer, nft.Encrypted, nft.CiphertextHashHex, nft.Listed, priceArg(nft.Price), nft.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint64) (*models.Nft, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE id = $1`

	nft, err := scanNft(r.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nft, nil
}

func (r *PostgresRepository) SelectByOwner(ctx context.Context, owner models.Principal) ([]*models.Nft, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE owner = $1 ORDER BY id`
	return r.selectNfts(ctx, query, string(owner))
}

func (r *PostgresRepository) SelectListed(ctx context.Context) ([]*models.Nft, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE listed ORDER BY id`
	return r.selectNfts(ctx, query)
}

func (r *PostgresRepository) ExistsByNoteID(ctx context.Context, noteID uint64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM nfts WHERE note_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, int64(noteID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateListing(ctx context.Context, id uint64, listed bool, priceSats *uint64) error {
	query := `UPDATE nfts SET listed = $2, price_sats = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, int64(id), listed, priceArg(priceSats))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) UpdateOwner(ctx context.Context, id uint64, owner models.Principal) error {
	query := `UPDATE nfts SET owner = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, int64(id), string(owner))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// CompletePurchase is the optimistic guard of the settlement protocol: the
// WHERE listed clause makes the final write conditional on the listing still
// standing, so of two racing buyers only one can win this update.
func (r *PostgresRepository) CompletePurchase(ctx context.Context, id uint64, buyer models.Principal) error {
	query := `
		UPDATE nfts SET owner = $2, listed = FALSE, price_sats = NULL
		WHERE id = $1 AND listed
	`
	res, err := r.db.ExecContext(ctx, query, int64(id), string(buyer))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrPurchaseConflict
	}
	return nil
}

func (r *PostgresRepository) selectNfts(ctx context.Context, query string, args ...any) ([]*models.Nft, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select nfts: %w", err)
	}
	defer rows.Close()

	var result []*models.Nft
	for rows.Next() {
		nft, err := scanNft(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, nft)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNft(row rowScanner) (*models.Nft, error) {
	var (
		nft   models.Nft
		id    int64
		note  int64
		owner string
		price sql.NullInt64
	)
	err := row.Scan(&id, &note, &owner, &nft.Title, &nft.Description, &nft.Pointer,
		&nft.Encrypted, &nft.CiphertextHashHex, &nft.Listed, &price, &nft.CreatedAt)
	if err != nil {
		return nil, err
	}
	nft.ID = uint64(id)
	nft.NoteID = uint64(note)
	nft.Owner = models.Principal(owner)
	if price.Valid {
		p := uint64(price.Int64)
		nft.Price = &p
	}
	return &nft, nil
}

func priceArg(price *uint64) any {
	if price == nil {
		return nil
	}
	return int64(*price)
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
