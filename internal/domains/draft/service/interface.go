package service

import (
	"context"

	"inkwell-backend/internal/domains/draft/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	CreateDraft(ctx context.Context, ownerID uuid.UUID, req model.CreateDraftRequest) (*model.Draft, error)
	GetDraft(ctx context.Context, ownerID, draftID uuid.UUID) (*model.DraftResponse, error)
	ListDrafts(ctx context.Context, ownerID uuid.UUID) ([]model.Draft, error)
	UpdateDraft(ctx context.Context, ownerID, draftID uuid.UUID, req model.UpdateDraftRequest) (*model.Draft, error)
	DeleteDraft(ctx context.Context, ownerID, draftID uuid.UUID) error

	AddChapter(ctx context.Context, ownerID, draftID uuid.UUID, req model.CreateChapterRequest) (*model.Chapter, error)
	UpdateChapter(ctx context.Context, ownerID, draftID, chapterID uuid.UUID, req model.UpdateChapterRequest) (*model.Chapter, error)
	DeleteChapter(ctx context.Context, ownerID, draftID, chapterID uuid.UUID) error
}
