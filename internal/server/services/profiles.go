package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"notemint/internal/common"
	"notemint/internal/server/access"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/repomanager"
)

// ProfileService manages user profiles. Usernames are unique
// case-insensitively across all principals.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m, now: time.Now}
}

// SetProfile creates or updates the caller's profile.
func (s *ProfileService) SetProfile(ctx context.Context, caller models.Principal, username, email string) (*models.UserProfile, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.ErrUsernameEmpty
	}

	repo := s.repomanager.Profiles(s.db)

	taken, err := repo.UsernameTaken(ctx, username, caller)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrUsernameTaken
	}

	profile := &models.UserProfile{
		ID:        caller,
		Username:  username,
		Email:     strings.TrimSpace(email),
		CreatedAt: s.now(),
	}
	if err := repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileOf returns any principal's profile. Usernames are public.
func (s *ProfileService) GetProfileOf(ctx context.Context, p models.Principal) (*models.UserProfile, error) {
	if p.IsAnonymous() {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Profiles(s.db).GetByPrincipal(ctx, p)
}

// GetProfile returns the caller's own profile.
func (s *ProfileService) GetProfile(ctx context.Context, caller models.Principal) (*models.UserProfile, error) {
	if err := access.AssertNotAnonymous(caller); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).GetByPrincipal(ctx, caller)
}

// UsernameAvailable reports whether a username is free for the caller.
func (s *ProfileService) UsernameAvailable(ctx context.Context, caller models.Principal, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, common.ErrUsernameEmpty
	}
	taken, err := s.repomanager.Profiles(s.db).UsernameTaken(ctx, username, caller)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// UserCount returns the number of registered profiles.
func (s *ProfileService) UserCount(ctx context.Context) (int64, error) {
	return s.repomanager.Profiles(s.db).Count(ctx)
}
