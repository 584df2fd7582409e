package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.Credential) error {

	query :=
		`INSERT INTO users (email, hash)
         VALUES ($1, $2)
		 `

	_, err := r.db.ExecContext(ctx, query, cred.Email, cred.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrUserExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	query :=
		`SELECT email, hash, created_at FROM users
		 WHERE email = $1
		 `

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&cred.Email, &cred.PasswordHash, &cred.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	query :=
		`SELECT email, first_name, last_name, dob, address FROM users
		 WHERE email = $1
		 `

	var (
		firstName, lastName, address sql.NullString
		dob                          sql.NullTime
	)

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&p.Email, &firstName, &lastName, &dob, &address)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.FirstName = firstName.String
	p.LastName = lastName.String
	p.Address = address.String
	if dob.Valid {
		p.DOB = dob.Time.Format(models.DateLayout)
	}

	return p, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	query :=
		`UPDATE users SET first_name = $1, last_name = $2, dob = $3, address = $4
		 WHERE email = $5
		 `

	dob, err := time.Parse(models.DateLayout, p.DOB)
	if err != nil {
		return fmt.Errorf("bad dob %q: %w", p.DOB, err)
	}

	res, err := r.db.ExecContext(ctx, query, p.FirstName, p.LastName, dob, p.Address, p.Email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
