package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	itemsrepo "github.com/dmitrijs2005/gophstore/internal/server/repositories/items"
	usersrepo "github.com/dmitrijs2005/gophstore/internal/server/repositories/users"
)

const (
	aliceID = "5f0c3a8e-8a3b-4c61-9d0c-2b7c1c6f0a11"
	bobID   = "9b2d7e41-3f6a-4a5e-8c1d-7e0f2a3b4c22"
	itemID  = "0e7b9c55-1d2a-4f3b-a6c7-8d9e0f1a2b33"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

// --- users repo ---

type fakeUsersRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User

	err       error // returned by every call when set
	createErr error
	updateErr error

	created []*models.User
	updates []models.UserUpdate
	images  map[string]string
	admins  map[string]bool
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{
		byID:    map[string]*models.User{},
		byEmail: map[string]*models.User{},
		images:  map[string]string{},
		admins:  map[string]bool{},
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = bobID
	cp.CreatedAt = time.Now()
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	f.updates = append(f.updates, upd)
	cp := *u
	if upd.Name != nil {
		cp.Name = *upd.Name
	}
	if upd.Email != nil {
		cp.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		cp.PasswordHash = *upd.PasswordHash
	}
	return &cp, nil
}

func (f *fakeUsersRepo) SetProfileImage(ctx context.Context, id, url string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	f.images[id] = url
	return nil
}

func (f *fakeUsersRepo) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[email]; !ok {
		return common.ErrNotFound
	}
	f.admins[email] = isAdmin
	return nil
}

func (f *fakeUsersRepo) UpsertAdmin(ctx context.Context, name, email, hash string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := &models.User{ID: aliceID, Name: name, Email: email, PasswordHash: hash, IsAdmin: true}
	f.byID[u.ID] = u
	f.byEmail[email] = u
	return u, nil
}

// --- items repo ---

type fakeItemsRepo struct {
	items []*models.Item
	err   error

	lastFields models.ItemFields
	lastID     string
}

func (f *fakeItemsRepo) Create(ctx context.Context, fl models.ItemFields) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFields = fl
	return &models.Item{ID: itemID, Name: fl.Name, Description: fl.Description, Price: fl.Price,
		Category: fl.Category, ImageURL: fl.ImageURL, CreatedAt: time.Now()}, nil
}

func (f *fakeItemsRepo) List(ctx context.Context) ([]*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeItemsRepo) Update(ctx context.Context, id string, fl models.ItemFields) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastID, f.lastFields = id, fl
	for _, it := range f.items {
		if it.ID == id {
			return &models.Item{ID: id, Name: fl.Name, Price: fl.Price}, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeItemsRepo) Delete(ctx context.Context, id string) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastID = id
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return it, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeItemsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Items(db dbx.DBTX) itemsrepo.Repository      { return m.i }

// --- hasher / tokens ---

// fakeHasher stores "hash:<plain>" so tests can read hashes back.
type fakeHasher struct {
	hashErr    error
	compareErr error
	compares   int
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hash:" + plain, nil
}

func (h *fakeHasher) Compare(plain, hash string) (bool, error) {
	h.compares++
	if h.compareErr != nil {
		return false, h.compareErr
	}
	return hash == "hash:"+plain, nil
}

type fakeTokens struct {
	err     error
	userID  string
	isAdmin bool
}

func (f *fakeTokens) Issue(userID string, isAdmin bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.userID, f.isAdmin = userID, isAdmin
	return "token-for-" + userID, nil
}

// --- image store ---

type fakeStore struct {
	putErr  error
	deleted []string
	puts    map[string]string
}

func (s *fakeStore) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.puts == nil {
		s.puts = map[string]string{}
	}
	s.puts[name] = string(b)
	return "/uploads/" + name, nil
}

func (s *fakeStore) Delete(ctx context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

func upload(name, contentType, body string) *Upload {
	return &Upload{Filename: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

var errDB = errors.New("db down")
