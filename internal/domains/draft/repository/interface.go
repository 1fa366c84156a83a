package repository

import (
	"context"

	"inkwell-backend/internal/domains/draft/model"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, draft *model.Draft) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Draft, error)
	// GetWithChapters returns the draft and its chapters ordered by
	// sort_order ascending. This is the snapshot the export pipeline
	// reads.
	GetWithChapters(ctx context.Context, id uuid.UUID) (*model.Draft, []model.Chapter, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Draft, error)
	Update(ctx context.Context, draft *model.Draft) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateChapter(ctx context.Context, chapter *model.Chapter) error
	GetChapter(ctx context.Context, id uuid.UUID) (*model.Chapter, error)
	UpdateChapter(ctx context.Context, chapter *model.Chapter) error
	DeleteChapter(ctx context.Context, id uuid.UUID) error
}
