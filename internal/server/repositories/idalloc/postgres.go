package idalloc

import (
	"context"
	"fmt"

	"notemint/internal/common"
	"notemint/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NextID pulls the next value of the shared sequence. The sequence is
// persistent and never rolled back, so allocation survives failed requests.
func (r *PostgresRepository) NextID(ctx context.Context) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT nextval('object_ids')`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: identifier allocation failed: %v", common.ErrFatalStorage, err)
	}
	return id, nil
}
