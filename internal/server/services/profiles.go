package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

// ProfileUpdate is the raw PUT body. Fields are untyped so that non-string
// JSON values can be told apart from missing ones.
type ProfileUpdate struct {
	FirstName any `json:"firstName"`
	LastName  any `json:"lastName"`
	DOB       any `json:"dob"`
	Address   any `json:"address"`
}

// Validate checks u in a fixed order and returns the first failing sentinel:
// common.ErrProfileIncomplete, common.ErrProfileNotStrings,
// common.ErrInvalidDOB or common.ErrDOBInFuture.
func (u *ProfileUpdate) Validate(now time.Time) error {
	err := validation.ValidateStruct(u,
		validation.Field(&u.FirstName, validation.Required),
		validation.Field(&u.LastName, validation.Required),
		validation.Field(&u.DOB, validation.Required),
		validation.Field(&u.Address, validation.Required),
	)
	if err != nil {
		return common.ErrProfileIncomplete
	}

	err = validation.ValidateStruct(u,
		validation.Field(&u.FirstName, validation.By(isString)),
		validation.Field(&u.LastName, validation.By(isString)),
		validation.Field(&u.Address, validation.By(isString)),
	)
	if err != nil {
		return common.ErrProfileNotStrings
	}

	dob, ok := u.DOB.(string)
	if !ok || validation.Validate(dob, validation.Date(models.DateLayout)) != nil {
		return common.ErrInvalidDOB
	}

	t, _ := time.Parse(models.DateLayout, dob)
	if t.After(now) {
		return common.ErrDOBInFuture
	}

	return nil
}

func isString(v any) error {
	if _, ok := v.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

// ProfileService reads and updates the descriptive part of a user row.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m, now: time.Now}
}

// Get returns the profile of email and whether viewer owns it. Callers show
// the date of birth and address to the owner only. An empty viewer is
// anonymous.
func (s *ProfileService) Get(ctx context.Context, email, viewer string) (*models.Profile, bool, error) {
	p, err := s.repomanager.Users(s.db).GetProfile(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return p, viewer != "" && viewer == email, nil
}

// Update validates u and overwrites the profile of email. Only the owner,
// identified by actor, may update it; validation runs first.
func (s *ProfileService) Update(ctx context.Context, actor, email string, u *ProfileUpdate) (*models.Profile, error) {
	if err := u.Validate(s.now()); err != nil {
		return nil, err
	}

	if actor != email {
		return nil, common.ErrForbidden
	}

	p := &models.Profile{
		Email:     email,
		FirstName: u.FirstName.(string),
		LastName:  u.LastName.(string),
		DOB:       u.DOB.(string),
		Address:   u.Address.(string),
	}

	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return p, nil
}
