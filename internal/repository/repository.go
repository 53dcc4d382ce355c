package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// q rewrites ? bindvars for the active driver, so the same queries run
// against pgx in production and sqlite3 in tests.
func (r *Repos) q(query string) string { return r.db.Rebind(query) }
