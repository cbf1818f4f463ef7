package trm

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Transaction interface {
	Commit() error
	Rollback() error
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// Manager scopes a unit of work to one transaction carried through the
// context. Every exit path rolls back unless the callback succeeded.
type Manager interface {
	Do(ctx context.Context, callback func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, callback func(ctx context.Context) error) error
}

type txManager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) Manager {
	return &txManager{
		db: db,
	}
}

func (t *txManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return t.do(ctx, nil, callback)
}

func (t *txManager) DoReadOnly(ctx context.Context, callback func(ctx context.Context) error) error {
	return t.do(ctx, &sql.TxOptions{ReadOnly: true}, callback)
}

func (t *txManager) do(ctx context.Context, opts *sql.TxOptions, callback func(ctx context.Context) error) error {
	tx, err := t.db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := callback(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
