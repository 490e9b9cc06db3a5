package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notemint/internal/common"
	"notemint/internal/dbx"
	"notemint/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (principal, username, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal)
		DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email
	`
	_, err := r.db.ExecContext(ctx, query, string(profile.ID), profile.Username, profile.Email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByPrincipal(ctx context.Context, p models.Principal) (*models.UserProfile, error) {
	query := `SELECT principal, username, email, created_at FROM user_profiles WHERE principal = $1`

	var (
		profile   models.UserProfile
		principal string
	)
	err := r.db.QueryRowContext(ctx, query, string(p)).
		Scan(&principal, &profile.Username, &profile.Email, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	profile.ID = models.Principal(principal)
	return &profile, nil
}

func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string, exclude models.Principal) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_profiles
			WHERE lower(username) = lower($1) AND principal <> $2
		)
	`
	var taken bool
	if err := r.db.QueryRowContext(ctx, query, username, string(exclude)).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM user_profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
