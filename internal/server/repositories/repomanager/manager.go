package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/people"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	People(db dbx.DBTX) people.Repository
}
