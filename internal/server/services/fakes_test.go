package services

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"notemint/internal/common"
	"notemint/internal/dbx"
	"notemint/internal/server/config"
	"notemint/internal/server/ledger"
	"notemint/internal/server/models"
	"notemint/internal/server/repositories/idalloc"
	"notemint/internal/server/repositories/nfts"
	"notemint/internal/server/repositories/notes"
	"notemint/internal/server/repositories/profiles"
	"notemint/internal/server/repositories/repomanager"
	"notemint/internal/server/repositories/settings"
)

// -------- test fakes --------

type fakeIDRepo struct {
	idalloc.Repository
	last uint64
	err  error
}

func (f *fakeIDRepo) NextID(ctx context.Context) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.last++
	return f.last, nil
}

type shareCall struct {
	id      uint64
	grantee models.Principal
	level   models.ShareLevel
}

type fakeNotesRepo struct {
	notes.Repository
	byID map[uint64]*models.Note

	createErr error
	created   []*models.Note

	updated map[uint64]string
	deleted []uint64

	shared   []shareCall
	unshared []shareCall

	transferred map[uint64]models.Principal
	transferErr error
}

func newFakeNotesRepo(ns ...*models.Note) *fakeNotesRepo {
	f := &fakeNotesRepo{
		byID:        map[uint64]*models.Note{},
		updated:     map[uint64]string{},
		transferred: map[uint64]models.Principal{},
	}
	for _, n := range ns {
		f.byID[n.ID] = n
	}
	return f
}

func (f *fakeNotesRepo) Create(ctx context.Context, note *models.Note) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, note)
	f.byID[note.ID] = note
	return nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, id uint64) (*models.Note, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

func (f *fakeNotesRepo) UpdateContent(ctx context.Context, id uint64, encrypted string) error {
	f.updated[id] = encrypted
	return nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id uint64) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

func (f *fakeNotesRepo) AddShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error {
	f.shared = append(f.shared, shareCall{id, grantee, level})
	return nil
}

func (f *fakeNotesRepo) RemoveShare(ctx context.Context, id uint64, grantee models.Principal, level models.ShareLevel) error {
	f.unshared = append(f.unshared, shareCall{id, grantee, level})
	return nil
}

func (f *fakeNotesRepo) TransferOwnership(ctx context.Context, id uint64, newOwner models.Principal) error {
	if f.transferErr != nil {
		return f.transferErr
	}
	f.transferred[id] = newOwner
	if n, ok := f.byID[id]; ok {
		n.Owner = newOwner
		n.SharedRead = nil
		n.SharedEdit = nil
	}
	return nil
}

type fakeNftsRepo struct {
	nfts.Repository
	byID       map[uint64]*models.Nft
	mintedFor  map[uint64]bool
	created    []*models.Nft
	createErr  error
	purchases  map[uint64]models.Principal
	conflict   bool
	listings   map[uint64]*uint64
	ownerMoves map[uint64]models.Principal
}

func newFakeNftsRepo(ns ...*models.Nft) *fakeNftsRepo {
	f := &fakeNftsRepo{
		byID:       map[uint64]*models.Nft{},
		mintedFor:  map[uint64]bool{},
		purchases:  map[uint64]models.Principal{},
		listings:   map[uint64]*uint64{},
		ownerMoves: map[uint64]models.Principal{},
	}
	for _, n := range ns {
		f.byID[n.ID] = n
		f.mintedFor[n.NoteID] = true
	}
	return f
}

func (f *fakeNftsRepo) Create(ctx context.Context, nft *models.Nft) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, nft)
	f.byID[nft.ID] = nft
	f.mintedFor[nft.NoteID] = true
	return nil
}

func (f *fakeNftsRepo) GetByID(ctx context.Context, id uint64) (*models.Nft, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

func (f *fakeNftsRepo) SelectByOwner(ctx context.Context, owner models.Principal) ([]*models.Nft, error) {
	var out []*models.Nft
	for _, n := range f.byID {
		if n.Owner == owner {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNftsRepo) SelectListed(ctx context.Context) ([]*models.Nft, error) {
	var out []*models.Nft
	for _, n := range f.byID {
		if n.Listed {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNftsRepo) ExistsByNoteID(ctx context.Context, noteID uint64) (bool, error) {
	return f.mintedFor[noteID], nil
}

func (f *fakeNftsRepo) UpdateListing(ctx context.Context, id uint64, listed bool, priceSats *uint64) error {
	f.listings[id] = priceSats
	if n, ok := f.byID[id]; ok {
		n.Listed = listed
		n.Price = priceSats
	}
	return nil
}

func (f *fakeNftsRepo) UpdateOwner(ctx context.Context, id uint64, owner models.Principal) error {
	f.ownerMoves[id] = owner
	if n, ok := f.byID[id]; ok {
		n.Owner = owner
	}
	return nil
}

func (f *fakeNftsRepo) CompletePurchase(ctx context.Context, id uint64, buyer models.Principal) error {
	if f.conflict {
		return common.ErrPurchaseConflict
	}
	f.purchases[id] = buyer
	if n, ok := f.byID[id]; ok {
		n.Owner = buyer
		n.Listed = false
		n.Price = nil
	}
	return nil
}

type fakeProfilesRepo struct {
	profiles.Repository
	byPrincipal map[models.Principal]*models.UserProfile
	taken       map[string]models.Principal
	count       int64
}

func newFakeProfilesRepo() *fakeProfilesRepo {
	return &fakeProfilesRepo{
		byPrincipal: map[models.Principal]*models.UserProfile{},
		taken:       map[string]models.Principal{},
	}
}

func (f *fakeProfilesRepo) Upsert(ctx context.Context, p *models.UserProfile) error {
	f.byPrincipal[p.ID] = p
	f.taken[p.Username] = p.ID
	return nil
}

func (f *fakeProfilesRepo) GetByPrincipal(ctx context.Context, p models.Principal) (*models.UserProfile, error) {
	profile, ok := f.byPrincipal[p]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return profile, nil
}

func (f *fakeProfilesRepo) UsernameTaken(ctx context.Context, username string, exclude models.Principal) (bool, error) {
	owner, ok := f.taken[username]
	return ok && owner != exclude, nil
}

func (f *fakeProfilesRepo) Count(ctx context.Context) (int64, error) {
	return f.count, nil
}

type fakeSettingsRepo struct {
	settings.Repository
	values map[string]string
	getErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: map[string]string{}}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingsRepo) setMaxNoteSize(size int) {
	f.values[settings.KeyMaxNoteSize] = strconv.Itoa(size)
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	ids      *fakeIDRepo
	notes    *fakeNotesRepo
	nfts     *fakeNftsRepo
	profiles *fakeProfilesRepo
	settings *fakeSettingsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		ids:      &fakeIDRepo{},
		notes:    newFakeNotesRepo(),
		nfts:     newFakeNftsRepo(),
		profiles: newFakeProfilesRepo(),
		settings: newFakeSettingsRepo(),
	}
}

func (m *fakeRepoManager) IDs(db dbx.DBTX) idalloc.Repository        { return m.ids }
func (m *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository        { return m.notes }
func (m *fakeRepoManager) Nfts(db dbx.DBTX) nfts.Repository          { return m.nfts }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository  { return m.profiles }
func (m *fakeRepoManager) Settings(db dbx.DBTX) settings.Repository  { return m.settings }

type transferCall struct {
	from   models.Principal
	to     models.Principal
	amount uint64
}

type fakeLedger struct {
	calls   []transferCall
	balance uint64
	// errs[i] fails the i-th TransferFrom call.
	errs map[int]error
}

func (f *fakeLedger) BalanceOf(ctx context.Context, account ledger.Account) (uint64, error) {
	return f.balance, nil
}

func (f *fakeLedger) TransferFrom(ctx context.Context, args ledger.TransferFromArgs) (uint64, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, transferCall{from: args.From.Owner, to: args.To.Owner, amount: args.Amount})
	if err := f.errs[idx]; err != nil {
		return 0, err
	}
	return uint64(idx + 1), nil
}

type fakeVetkd struct {
	publicKey  []byte
	derived    []byte
	err        error
	deriveArgs [][]byte
	calls      int
}

func (f *fakeVetkd) PublicKey(ctx context.Context, derivationContext []byte) ([]byte, error) {
	f.calls++
	return f.publicKey, f.err
}

func (f *fakeVetkd) DeriveKey(ctx context.Context, input, derivationContext, transportPublicKey []byte) ([]byte, error) {
	f.calls++
	f.deriveArgs = [][]byte{input, derivationContext, transportPublicKey}
	if f.err != nil {
		return nil, f.err
	}
	return f.derived, nil
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AdminPrincipals = []string{"admin-principal"}
	cfg.TreasuryPrincipal = "treasury-principal"
	return cfg
}
