package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore hashes passwords and reads or creates users rows.
type CredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cost        int
}

func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, cost int) *CredentialStore {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{db: db, repomanager: m, cost: cost}
}

// FindByEmail returns common.ErrorNotFound when no user has exactly this email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	cred, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return cred, nil
}

// Create stores a new credential for email. It returns common.ErrUserExists
// when the email is taken, whether seen by the lookup or by the insert.
func (s *CredentialStore) Create(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrUserExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		return repo.Create(ctx, &models.Credential{Email: email, PasswordHash: string(hash)})
	})

	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return common.ErrUserExists
		}
		return fmt.Errorf("%w: error creating user: %v", common.ErrorInternal, err)
	}

	return nil
}

// VerifyPassword reports whether raw matches the stored bcrypt hash.
func (s *CredentialStore) VerifyPassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
