package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell-backend/internal/domains/ledger/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ledgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) Repository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT balance FROM credit_accounts WHERE owner_id = $1`,
		ownerID,
	).Scan(&balance)

	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	return balance, nil
}

func (r *ledgerRepository) DebitTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, kind model.EntryKind, reference string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE credit_accounts
         SET balance = balance - $2, updated_at = NOW()
         WHERE owner_id = $1 AND balance >= $2`,
		ownerID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to debit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the account does not exist or the balance is short;
		// both read as insufficient funds to the caller.
		return model.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO credit_ledger_entries (owner_id, amount, kind, reference)
         VALUES ($1, $2, $3, $4)`,
		ownerID, amount.Neg(), kind, reference,
	)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return nil
}
