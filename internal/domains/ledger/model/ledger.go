package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the read model of a user's credit balance. The general
// accounting rules live in the accounting subsystem; this side only
// reads the balance and posts the export-fee debit.
type Account struct {
	OwnerID   uuid.UUID       `json:"owner_id" db:"owner_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// EntryKind tags a journal entry with its origin.
type EntryKind string

const (
	EntryKindExportFee EntryKind = "export_fee"
)

// Entry is one journal line. Amount is negative for debits.
type Entry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OwnerID   uuid.UUID       `json:"owner_id" db:"owner_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Kind      EntryKind       `json:"kind" db:"kind"`
	Reference *string         `json:"reference" db:"reference"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}
