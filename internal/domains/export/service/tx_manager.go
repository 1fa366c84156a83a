package service

import (
	"context"

	"inkwell-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolTxManager runs functions inside a pgx transaction on a live
// pool. Tests swap in a fake that passes a nil tx through.
type PoolTxManager struct {
	pool *pgxpool.Pool
}

func NewPoolTxManager(pool *pgxpool.Pool) *PoolTxManager {
	return &PoolTxManager{pool: pool}
}

func (m *PoolTxManager) WithinTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return database.WithTransaction(ctx, m.pool, fn)
}
