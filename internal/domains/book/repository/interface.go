package repository

import (
	"context"

	"inkwell-backend/internal/domains/book/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error

	// The export transaction resolves the target book by the identity
	// rule (owner, exact title) and creates or updates it with the same
	// tx that debits the export fee.
	FindByOwnerAndTitleTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, title string) (*model.Book, error)
	CreateTx(ctx context.Context, tx pgx.Tx, book *model.Book) error
	UpdateExportTx(ctx context.Context, tx pgx.Tx, book *model.Book) error
}
