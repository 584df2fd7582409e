package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

var personIDPattern = regexp.MustCompile(`^nm\d+$`)

type PeopleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPeopleService(db *sql.DB, m repomanager.RepositoryManager) *PeopleService {
	return &PeopleService{db: db, repomanager: m}
}

// ValidatePersonID returns common.ErrInvalidPersonID unless id looks like an
// nconst, e.g. "nm0000138".
func ValidatePersonID(id string) error {
	if validation.Validate(id, validation.Required, validation.Match(personIDPattern)) != nil {
		return common.ErrInvalidPersonID
	}
	return nil
}

func (s *PeopleService) Get(ctx context.Context, id string) (*models.Person, error) {
	if err := ValidatePersonID(id); err != nil {
		return nil, err
	}

	p, err := s.repomanager.People(s.db).GetPerson(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return p, nil
}
