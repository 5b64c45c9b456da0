package store

import (
	"context"
	"database/sql"
)

// Execer, Getter and Selecter are satisfied by both *sqlx.DB and *sqlx.Tx,
// so every store method runs inside or outside a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}
