package people

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	query :=
		`SELECT primary_name, birth_year, death_year FROM names
		 WHERE nconst = $1
		 `

	var birth, death sql.NullInt64

	p := &models.Person{ID: id}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.Name, &birth, &death)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.BirthYear = nullInt(birth)
	p.DeathYear = nullInt(death)

	roles, err := r.roles(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Roles = roles

	return p, nil
}

func (r *PostgresRepository) roles(ctx context.Context, id string) ([]models.Role, error) {
	query :=
		`SELECT b.primary_title, p.tconst, p.category, p.characters, b.imdb_rating
		 FROM principals p
		 LEFT JOIN basics b ON p.tconst = b.tconst
		 WHERE p.nconst = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		var (
			title, characters sql.NullString
			rating            sql.NullFloat64
			role              models.Role
		)
		if err := rows.Scan(&title, &role.MovieID, &role.Category, &characters, &rating); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		role.MovieName = title.String
		role.Characters = parseCharacters(characters.String)
		if rating.Valid {
			v := rating.Float64
			role.IMDBRating = &v
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

// parseCharacters decodes the JSON array stored in principals.characters.
// Anything that is not a JSON array of strings yields an empty list.
func parseCharacters(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
