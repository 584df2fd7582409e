// Package people reads cast and crew records from the movie catalogue.
package people

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// Repository looks up people by their catalogue id (nconst).
type Repository interface {
	// GetPerson returns common.ErrorNotFound when the id is unknown.
	GetPerson(ctx context.Context, id string) (*models.Person, error)
}
