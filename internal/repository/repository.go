package repository

import (
	"context"
	"database/sql"

	"github.com/jengzang/carsharing-backend-go/internal/database"
)

// base binds a repository to a connection or transaction and its dialect
type base struct {
	q       database.DBTX
	dialect database.Dialect
}

func newBase(db *database.DB) base {
	return base{q: db, dialect: db.Dialect}
}

func (b base) withTx(tx *sql.Tx) base {
	return base{q: tx, dialect: b.dialect}
}

func (b base) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return b.q.ExecContext(ctx, b.dialect.Rebind(query), args...)
}

func (b base) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return b.q.QueryContext(ctx, b.dialect.Rebind(query), args...)
}

func (b base) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return b.q.QueryRowContext(ctx, b.dialect.Rebind(query), args...)
}

func (b base) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return b.q.PrepareContext(ctx, b.dialect.Rebind(query))
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolPtr(n sql.NullBool) *bool {
	if !n.Valid {
		return nil
	}
	b := n.Bool
	return &b
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
