package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	aliceID = "7d0e4b0a-5a7e-4c55-9d43-1f2a3b4c5d6e"
	adminID = "0b9c7a1e-2f3d-4e5f-8a9b-0c1d2e3f4a5b"
	itemID  = "c3d4e5f6-a7b8-4c9d-8e0f-112233445566"

	testSecret = "test-secret"
)

type fakeUsers struct {
	mu sync.Mutex

	registered  []services.RegisterInput
	registerErr error

	loginRes *services.LoginResult
	loginErr error

	profile    *models.User
	profileErr error

	updatedID string
	updates   []services.ProfileUpdate
	updateErr error
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, in)
	return &models.User{ID: aliceID, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeUsers) Login(_ context.Context, _, _ string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginRes, nil
}

func (f *fakeUsers) Profile(_ context.Context, id string) (*models.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil || f.profile.ID != id {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	return f.profile, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, upd services.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedID = id
	f.updates = append(f.updates, upd)
	return &models.User{ID: id}, nil
}

type fakeItems struct {
	mu sync.Mutex

	items   []*models.Item
	listErr error

	created   []services.ItemInput
	updated   map[string]services.ItemInput
	deleted   []string
	opErr     error
	missingID string
}

func (f *fakeItems) List(context.Context) ([]*models.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.items == nil {
		return []*models.Item{}, nil
	}
	return f.items, nil
}

func (f *fakeItems) Create(_ context.Context, in services.ItemInput) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return nil, f.opErr
	}
	f.created = append(f.created, in)
	return toItem(itemID, in), nil
}

func (f *fakeItems) Update(_ context.Context, id string, in services.ItemInput) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return nil, f.opErr
	}
	if id == f.missingID {
		return nil, common.NewError(common.ErrNotFound, "Item not found")
	}
	if f.updated == nil {
		f.updated = map[string]services.ItemInput{}
	}
	f.updated[id] = in
	return toItem(id, in), nil
}

func (f *fakeItems) Delete(_ context.Context, id string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.missingID {
		return nil, common.NewError(common.ErrNotFound, "Item not found")
	}
	f.deleted = append(f.deleted, id)
	return &models.Item{ID: id}, nil
}

func toItem(id string, in services.ItemInput) *models.Item {
	it := &models.Item{ID: id, Name: in.Name, Description: in.Description, Category: in.Category, ImageURL: in.ImageURL}
	if in.Price != nil {
		it.Price = *in.Price
	}
	return it
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func (s *fakeStore) Put(_ context.Context, name, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[name] = b
	return "/uploads/" + name, nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	s.deleted = append(s.deleted, name)
	return nil
}

type fakeImageOwners struct {
	set map[string]string
	err error
}

func (f *fakeImageOwners) SetProfileImage(_ context.Context, userID, url string) error {
	if f.err != nil {
		return f.err
	}
	if f.set == nil {
		f.set = map[string]string{}
	}
	f.set[userID] = url
	return nil
}

type testEnv struct {
	srv    *Server
	users  *fakeUsers
	items  *fakeItems
	store  *fakeStore
	owners *fakeImageOwners
	tokens *auth.TokenService
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:        "127.0.0.1:0",
		SecretKey:       testSecret,
		TokenTTL:        time.Hour,
		ShutdownTimeout: time.Second,
		UploadMaxBytes:  5 << 20,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*Deps)) *testEnv {
	t.Helper()

	cfg := testConfig()
	env := &testEnv{
		users:  &fakeUsers{},
		items:  &fakeItems{},
		store:  &fakeStore{},
		owners: &fakeImageOwners{},
		tokens: auth.NewTokenService([]byte(testSecret), time.Hour),
	}

	deps := Deps{
		Users:  env.users,
		Items:  env.items,
		Images: services.NewImageService(env.store, env.owners, cfg, logging.Nop{}),
		Tokens: env.tokens,
	}
	for _, m := range mutate {
		m(&deps)
	}

	env.srv = NewServer(cfg, logging.Nop{}, deps)
	return env
}

func (e *testEnv) token(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	tok, err := e.tokens.Issue(userID, isAdmin)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return e.do(t, method, path, r, "application/json", token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, map[string]any{"error": msg}, decode(t, rec))
}

// multipartBody builds a form with one file part carrying its own
// Content-Type, which multipart.Writer.CreateFormFile does not allow.
func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
