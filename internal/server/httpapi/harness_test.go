package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/people"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/users"
	"github.com/dmitrijs2005/movieapi/internal/server/revocation"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers struct {
	mu       sync.Mutex
	creds    map[string]models.Credential
	profiles map[string]models.Profile
}

func (m *memUsers) Create(_ context.Context, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[cred.Email]; ok {
		return common.ErrUserExists
	}
	m.creds[cred.Email] = *cred
	m.profiles[cred.Email] = models.Profile{Email: cred.Email}
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (m *memUsers) GetProfile(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.Email]; !ok {
		return common.ErrorNotFound
	}
	m.profiles[p.Email] = *p
	return nil
}

type memPeople map[string]*models.Person

func (m memPeople) GetPerson(_ context.Context, id string) (*models.Person, error) {
	p, ok := m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

type memManager struct {
	users  *memUsers
	people memPeople
}

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *memManager) People(dbx.DBTX) people.Repository           { return m.people }

// testAPI is the full router over in-memory repositories. Transactions run
// against an empty in-memory SQLite database.
type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	codec    *auth.Codec
	registry revocation.Registry
	users    *memUsers
	people   memPeople

	mu  sync.Mutex
	now time.Time
}

func (a *testAPI) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now
}

func (a *testAPI) advance(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = a.now.Add(d)
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithRegistry(t, revocation.NewMemory())
}

func newTestAPIWithRegistry(t *testing.T, registry revocation.Registry) *testAPI {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	a := &testAPI{
		t:        t,
		registry: registry,
		users:    &memUsers{creds: map[string]models.Credential{}, profiles: map[string]models.Profile{}},
		people:   memPeople{},
		now:      time.Now(),
	}

	a.codec, err = auth.NewCodec([]byte("test-secret"), auth.WithClock(a.clock))
	require.NoError(t, err)

	rm := &memManager{users: a.users, people: a.people}
	creds := services.NewCredentialStore(db, rm, 0)
	sessions := services.NewSessionService(creds, a.codec, registry, services.TTLs{
		Access:  600 * time.Second,
		Refresh: 86400 * time.Second,
	})

	h := NewHandlers(sessions, services.NewProfileService(db, rm), services.NewPeopleService(db, rm), logging.Nop())
	a.router = NewRouter(h, NewGate(a.codec, registry, logging.Nop()), logging.Nop())
	return a
}

func (a *testAPI) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) register(email, password string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/user/register", gin.H{"email": email, "password": password}, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testAPI) login(email, password string) tokenPairResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/user/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var pair tokenPairResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}
