// Package users declares the repository contract for user accounts and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// Repository reads and writes rows of the users table.
type Repository interface {
	// Create inserts a credential. It returns common.ErrUserExists when the
	// email is already taken, including when a concurrent insert won the race.
	Create(ctx context.Context, cred *models.Credential) error

	// GetByEmail returns common.ErrorNotFound when no row matches exactly.
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)

	GetProfile(ctx context.Context, email string) (*models.Profile, error)

	// UpdateProfile overwrites the descriptive columns of an existing row.
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}
