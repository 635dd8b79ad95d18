package pgrepo

import (
	"context"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// TransactionManager implements domain.TransactionManager using pgx
type TransactionManager struct {
	db Pool
}

func NewTransactionManager(db Pool) domain.TransactionManager {
	return &TransactionManager{db: db}
}

// Do runs fn inside one transaction. Repositories called with the context
// passed to fn join it.
func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.WithContext(ctx).Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	return tx.Commit(ctx)
}

type txKey struct{}

// conn returns the transaction carried by ctx, if any, else db.
func conn(ctx context.Context, db DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}
