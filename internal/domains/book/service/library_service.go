package service

import (
	"context"
	"fmt"
	"time"

	"inkwell-backend/internal/domains/book/model"
	"inkwell-backend/internal/domains/book/repository"
	"inkwell-backend/pkg/cache"
	"inkwell-backend/pkg/logger"

	"github.com/google/uuid"
)

const libraryCacheTTL = 5 * time.Minute

// LibraryCacheKey is the per-owner cache key for the library listing.
// The export pipeline invalidates it after a successful export.
func LibraryCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("library:%s", ownerID)
}

type LibraryService struct {
	repo  repository.Repository
	cache cache.Cache
}

func NewService(repo repository.Repository, c cache.Cache) ServiceInterface {
	return &LibraryService{repo: repo, cache: c}
}

func (s *LibraryService) ListLibrary(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	cacheKey := LibraryCacheKey(ownerID)

	var cached []model.Book
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		// A broken cache never blocks a read; fall through to the DB.
		logger.Error("library cache read failed", err)
	}
	if found {
		return cached, nil
	}

	books, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, books, libraryCacheTTL); err != nil {
		logger.Error("library cache write failed", err)
	}

	return books, nil
}

func (s *LibraryService) GetBook(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, model.ErrNotOwner
	}
	return book, nil
}

func (s *LibraryService) UpdateProgress(ctx context.Context, ownerID, bookID uuid.UUID, req model.UpdateProgressRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.GetBook(ctx, ownerID, bookID); err != nil {
		return err
	}

	if err := s.repo.UpdateProgress(ctx, bookID, req.Progress); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, LibraryCacheKey(ownerID)); err != nil {
		logger.Error("library cache invalidation failed", err)
	}

	return nil
}
