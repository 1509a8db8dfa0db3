package data

import (
	"context"
	"database/sql"

	"github.com/pressrun/backoffice/internal/data/pgxutil"
)

// SQLTransactor implements core.Transactor over a *sql.DB.
type SQLTransactor struct {
	DB *sql.DB
}

// NewSQLTransactor wraps a database handle.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{DB: db}
}

// WithTx runs fn inside one transaction; it fully commits or fully aborts.
func (t *SQLTransactor) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return pgxutil.WithSQLTx(ctx, t.DB, pgxutil.SQLTxConfig{Fn: fn})
}
