package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"notemint/internal/common"
	"notemint/internal/server/models"
)

type fakeArchiver struct {
	pointer string
	err     error
	calls   int
}

func (f *fakeArchiver) ArchiveCiphertext(ctx context.Context, noteID uint64, ciphertext string) (string, error) {
	f.calls++
	return f.pointer, f.err
}

func newNftService(t *testing.T, m *fakeRepoManager, archiver Archiver) *NftService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	limits := NewLimitsService(db, m, testConfig())
	return NewNftService(db, m, limits, archiver)
}

func TestMint_OnlyOwner(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c",
		SharedEdit: []models.Principal{bob}})
	svc := newNftService(t, m, nil)

	_, err := svc.Mint(context.Background(), bob, 7, "t", "", "abcd", nil)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden for editor mint, got %v", err)
	}
	if len(m.nfts.created) != 0 {
		t.Fatalf("nft was created: %+v", m.nfts.created)
	}
}

func TestMint_InternalPointerByDefault(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c"})
	svc := newNftService(t, m, nil)

	id, err := svc.Mint(context.Background(), alice, 7, "title", "desc", "abcd", nil)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected allocated id 1, got %d", id)
	}

	nft := m.nfts.created[0]
	if nft.Pointer != "note://notemint/7" {
		t.Fatalf("unexpected pointer %q", nft.Pointer)
	}
	if !nft.Encrypted || nft.CiphertextHashHex != "abcd" {
		t.Fatalf("unexpected nft %+v", nft)
	}
	if nft.Listed || nft.Price != nil {
		t.Fatalf("nft should start unlisted: %+v", nft)
	}
}

func TestMint_ArchiverPointerAndImmediateListing(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c"})
	arch := &fakeArchiver{pointer: "https://s3.local/notes/7/snap"}
	svc := newNftService(t, m, arch)

	_, err := svc.Mint(context.Background(), alice, 7, "title", "", "abcd", uintPtr(500))
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if arch.calls != 1 {
		t.Fatalf("archiver called %d times", arch.calls)
	}

	nft := m.nfts.created[0]
	if nft.Pointer != arch.pointer {
		t.Fatalf("unexpected pointer %q", nft.Pointer)
	}
	if !nft.Listed || nft.Price == nil || *nft.Price != 500 {
		t.Fatalf("immediate listing not applied: %+v", nft)
	}
}

func TestMint_ArchiverFailureAborts(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c"})
	arch := &fakeArchiver{err: errors.New("bucket gone")}
	svc := newNftService(t, m, arch)

	_, err := svc.Mint(context.Background(), alice, 7, "title", "", "abcd", nil)
	if err == nil || !strings.Contains(err.Error(), "snapshot archive failed") {
		t.Fatalf("expected archive failure, got %v", err)
	}
	if len(m.nfts.created) != 0 {
		t.Fatalf("nft created despite archive failure")
	}
}

func TestMint_OversizedNoteRejected(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: strings.Repeat("x", 20)})
	m.settings.setMaxNoteSize(10)
	svc := newNftService(t, m, nil)

	_, err := svc.Mint(context.Background(), alice, 7, "title", "", "abcd", nil)
	var sizeErr *common.SizeExceededError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected SizeExceededError, got %v", err)
	}
}

func TestMint_EmptyTitleOrHashRejected(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c"})
	svc := newNftService(t, m, nil)

	_, err := svc.Mint(context.Background(), alice, 7, "", "", "abcd", nil)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
	_, err = svc.Mint(context.Background(), alice, 7, "title", "", "", nil)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error for empty hash, got %v", err)
	}
}

func TestMint_SameNoteTwice(t *testing.T) {
	m := newFakeRepoManager()
	m.notes = newFakeNotesRepo(&models.Note{ID: 7, Owner: alice, Encrypted: "c"})
	svc := newNftService(t, m, nil)

	if _, err := svc.Mint(context.Background(), alice, 7, "first", "", "abcd", nil); err != nil {
		t.Fatalf("first Mint error: %v", err)
	}
	if _, err := svc.Mint(context.Background(), alice, 7, "second", "", "abcd", nil); err != nil {
		t.Fatalf("second Mint error: %v", err)
	}
	if len(m.nfts.created) != 2 {
		t.Fatalf("expected two tokens over one note, got %d", len(m.nfts.created))
	}
	if m.nfts.created[0].ID == m.nfts.created[1].ID {
		t.Fatal("tokens share an id")
	}
}

func TestUpdateListing_Rules(t *testing.T) {
	m := newFakeRepoManager()
	m.nfts = newFakeNftsRepo(&models.Nft{ID: 9, NoteID: 7, Owner: alice})
	svc := newNftService(t, m, nil)

	err := svc.UpdateListing(context.Background(), bob, 9, true, uintPtr(100))
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden for non-owner, got %v", err)
	}

	err = svc.UpdateListing(context.Background(), alice, 9, true, nil)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error for priceless listing, got %v", err)
	}

	if err := svc.UpdateListing(context.Background(), alice, 9, true, uintPtr(100)); err != nil {
		t.Fatalf("listing error: %v", err)
	}
	if n := m.nfts.byID[9]; !n.Listed || *n.Price != 100 {
		t.Fatalf("listing not applied: %+v", n)
	}

	// Delisting with a stale price clears it.
	if err := svc.UpdateListing(context.Background(), alice, 9, false, uintPtr(100)); err != nil {
		t.Fatalf("delisting error: %v", err)
	}
	if n := m.nfts.byID[9]; n.Listed || n.Price != nil {
		t.Fatalf("delisting did not clear price: %+v", n)
	}
}

func TestTransfer_Rules(t *testing.T) {
	m := newFakeRepoManager()
	m.nfts = newFakeNftsRepo(&models.Nft{ID: 9, NoteID: 7, Owner: alice})
	svc := newNftService(t, m, nil)

	err := svc.Transfer(context.Background(), alice, 9, models.Anonymous)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error for anonymous recipient, got %v", err)
	}

	err = svc.Transfer(context.Background(), bob, 9, carol)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden for non-owner, got %v", err)
	}

	if err := svc.Transfer(context.Background(), alice, 9, bob); err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if m.nfts.byID[9].Owner != bob {
		t.Fatalf("owner not updated: %+v", m.nfts.byID[9])
	}
}

func TestTokensOf(t *testing.T) {
	m := newFakeRepoManager()
	m.nfts = newFakeNftsRepo(
		&models.Nft{ID: 1, NoteID: 10, Owner: alice},
		&models.Nft{ID: 2, NoteID: 11, Owner: bob},
		&models.Nft{ID: 3, NoteID: 12, Owner: alice},
	)
	svc := newNftService(t, m, nil)

	ids, err := svc.TokensOf(context.Background(), alice)
	if err != nil {
		t.Fatalf("TokensOf error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 tokens, got %v", ids)
	}
	for _, id := range ids {
		if id != 1 && id != 3 {
			t.Fatalf("unexpected token id %d", id)
		}
	}
}
