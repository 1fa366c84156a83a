package repository

import (
	"context"

	"inkwell-backend/internal/domains/ledger/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// GetBalance reads the current balance. A missing account reads
	// as a zero balance.
	GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)

	// DebitTx atomically decrements the balance and records a journal
	// entry, inside the caller's transaction. Returns
	// model.ErrInsufficientFunds when the balance does not cover the
	// amount; the conditional UPDATE makes the check and the decrement
	// one statement, so a concurrent drain cannot slip between them.
	DebitTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, kind model.EntryKind, reference string) error
}
