package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/people"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeUsersRepo keeps users in a map. The *Err fields force failures.
type fakeUsersRepo struct {
	mu       sync.Mutex
	creds    map[string]*models.Credential
	profiles map[string]*models.Profile

	getErr     error
	createErr  error
	profileErr error
	updateErr  error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		creds:    map[string]*models.Credential{},
		profiles: map[string]*models.Profile{},
	}
}

func (f *fakeUsersRepo) Create(_ context.Context, cred *models.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.creds[cred.Email]; ok {
		return common.ErrUserExists
	}
	c := *cred
	f.creds[cred.Email] = &c
	f.profiles[cred.Email] = &models.Profile{Email: cred.Email}
	return nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.creds[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeUsersRepo) GetProfile(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.profiles[p.Email]; !ok {
		return common.ErrorNotFound
	}
	out := *p
	f.profiles[p.Email] = &out
	return nil
}

type fakePeopleRepo struct {
	people map[string]*models.Person
	err    error
}

func (f *fakePeopleRepo) GetPerson(_ context.Context, id string) (*models.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.people[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePeopleRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) People(dbx.DBTX) people.Repository           { return m.p }
