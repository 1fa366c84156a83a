package service

import (
	"context"

	"inkwell-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	ListLibrary(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	GetBook(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Book, error)
	UpdateProgress(ctx context.Context, ownerID, bookID uuid.UUID, req model.UpdateProgressRequest) error
}
