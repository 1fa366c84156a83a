package service

import (
	"context"

	"inkwell-backend/internal/domains/draft/model"
	"inkwell-backend/internal/domains/draft/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DraftService owns the manuscript CRUD rules. Every operation is
// scoped to the caller: a draft is mutable by its owner only.
type DraftService struct {
	repo repository.Repository
}

func NewService(repo repository.Repository) ServiceInterface {
	return &DraftService{repo: repo}
}

// ownedDraft loads a draft and enforces ownership.
func (s *DraftService) ownedDraft(ctx context.Context, ownerID, draftID uuid.UUID) (*model.Draft, error) {
	draft, err := s.repo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.OwnerID != ownerID {
		return nil, model.ErrNotOwner
	}
	return draft, nil
}

func (s *DraftService) CreateDraft(ctx context.Context, ownerID uuid.UUID, req model.CreateDraftRequest) (*model.Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	draft := &model.Draft{
		OwnerID:  ownerID,
		Title:    req.Title,
		Genre:    req.Genre,
		Synopsis: req.Synopsis,
		CoverURL: req.CoverURL,
		Tags:     pq.StringArray(req.Tags),
	}

	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (s *DraftService) GetDraft(ctx context.Context, ownerID, draftID uuid.UUID) (*model.DraftResponse, error) {
	if _, err := s.ownedDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}

	draft, chapters, err := s.repo.GetWithChapters(ctx, draftID)
	if err != nil {
		return nil, err
	}

	return &model.DraftResponse{Draft: *draft, Chapters: chapters}, nil
}

func (s *DraftService) ListDrafts(ctx context.Context, ownerID uuid.UUID) ([]model.Draft, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *DraftService) UpdateDraft(ctx context.Context, ownerID, draftID uuid.UUID, req model.UpdateDraftRequest) (*model.Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	draft, err := s.ownedDraft(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	draft.Title = req.Title
	draft.Genre = req.Genre
	draft.Synopsis = req.Synopsis
	draft.CoverURL = req.CoverURL
	draft.Tags = pq.StringArray(req.Tags)

	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (s *DraftService) DeleteDraft(ctx context.Context, ownerID, draftID uuid.UUID) error {
	if _, err := s.ownedDraft(ctx, ownerID, draftID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, draftID)
}

func (s *DraftService) AddChapter(ctx context.Context, ownerID, draftID uuid.UUID, req model.CreateChapterRequest) (*model.Chapter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ownedDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}

	chapter := &model.Chapter{
		DraftID:    draftID,
		Title:      req.Title,
		RawContent: req.Content,
	}
	if req.SortOrder != nil {
		chapter.SortOrder = *req.SortOrder
	}

	if err := s.repo.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}

	return chapter, nil
}

func (s *DraftService) UpdateChapter(ctx context.Context, ownerID, draftID, chapterID uuid.UUID, req model.UpdateChapterRequest) (*model.Chapter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ownedDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}

	chapter, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter.DraftID != draftID {
		return nil, model.ErrChapterNotFound
	}

	chapter.Title = req.Title
	chapter.RawContent = req.Content

	if err := s.repo.UpdateChapter(ctx, chapter); err != nil {
		return nil, err
	}

	return chapter, nil
}

func (s *DraftService) DeleteChapter(ctx context.Context, ownerID, draftID, chapterID uuid.UUID) error {
	if _, err := s.ownedDraft(ctx, ownerID, draftID); err != nil {
		return err
	}

	chapter, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	if chapter.DraftID != draftID {
		return model.ErrChapterNotFound
	}

	return s.repo.DeleteChapter(ctx, chapterID)
}
