package services

import (
	"context"
	"errors"
	"testing"

	"notemint/internal/common"
	"notemint/internal/server/models"
)

func newProfileService(t *testing.T, m *fakeRepoManager) *ProfileService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	return NewProfileService(db, m)
}

func TestSetProfile_TrimsAndStores(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	p, err := svc.SetProfile(context.Background(), alice, "  alice  ", " a@example.com ")
	if err != nil {
		t.Fatalf("SetProfile error: %v", err)
	}
	if p.Username != "alice" || p.Email != "a@example.com" {
		t.Fatalf("fields not trimmed: %+v", p)
	}
	if m.profiles.byPrincipal[alice] == nil {
		t.Fatal("profile not persisted")
	}
}

func TestSetProfile_EmptyUsername(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	_, err := svc.SetProfile(context.Background(), alice, "   ", "")
	if !errors.Is(err, common.ErrUsernameEmpty) {
		t.Fatalf("expected ErrUsernameEmpty, got %v", err)
	}
}

func TestSetProfile_UsernameTakenByOther(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	if _, err := svc.SetProfile(context.Background(), alice, "shared", ""); err != nil {
		t.Fatalf("first SetProfile error: %v", err)
	}
	_, err := svc.SetProfile(context.Background(), bob, "shared", "")
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestSetProfile_OwnUsernameCanBeKept(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	if _, err := svc.SetProfile(context.Background(), alice, "alice", ""); err != nil {
		t.Fatalf("first SetProfile error: %v", err)
	}
	if _, err := svc.SetProfile(context.Background(), alice, "alice", "new@example.com"); err != nil {
		t.Fatalf("re-upsert with own username failed: %v", err)
	}
}

func TestSetProfile_AnonymousRejected(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	_, err := svc.SetProfile(context.Background(), models.Anonymous, "ghost", "")
	if !errors.Is(err, common.ErrorAnonymous) {
		t.Fatalf("expected ErrorAnonymous, got %v", err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	_, err := svc.GetProfile(context.Background(), alice)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUsernameAvailable(t *testing.T) {
	m := newFakeRepoManager()
	svc := newProfileService(t, m)

	if _, err := svc.SetProfile(context.Background(), alice, "alice", ""); err != nil {
		t.Fatalf("SetProfile error: %v", err)
	}

	free, err := svc.UsernameAvailable(context.Background(), bob, "alice")
	if err != nil {
		t.Fatalf("UsernameAvailable error: %v", err)
	}
	if free {
		t.Fatal("taken username reported as available")
	}

	free, err = svc.UsernameAvailable(context.Background(), bob, "bob")
	if err != nil {
		t.Fatalf("UsernameAvailable error: %v", err)
	}
	if !free {
		t.Fatal("free username reported as taken")
	}
}

func TestUserCount(t *testing.T) {
	m := newFakeRepoManager()
	m.profiles.count = 3
	svc := newProfileService(t, m)

	n, err := svc.UserCount(context.Background())
	if err != nil {
		t.Fatalf("UserCount error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 users, got %d", n)
	}
}
