package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	bookModel "inkwell-backend/internal/domains/book/model"
	bookRepo "inkwell-backend/internal/domains/book/repository"
	bookService "inkwell-backend/internal/domains/book/service"
	draftModel "inkwell-backend/internal/domains/draft/model"
	draftRepo "inkwell-backend/internal/domains/draft/repository"
	"inkwell-backend/internal/domains/export/epub"
	"inkwell-backend/internal/domains/export/model"
	exportRepo "inkwell-backend/internal/domains/export/repository"
	"inkwell-backend/internal/domains/export/sanitize"
	ledgerModel "inkwell-backend/internal/domains/ledger/model"
	ledgerRepo "inkwell-backend/internal/domains/ledger/repository"
	"inkwell-backend/internal/infrastructure/storage"
	"inkwell-backend/internal/shared"
	"inkwell-backend/pkg/cache"
	"inkwell-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ExportService orchestrates the draft-to-book pipeline: load and
// authorize the draft, check the owner's credit balance, sanitize
// chapters, assemble and write the archive, upload it, then persist
// the book row and the fee debit in one transaction.
type ExportService struct {
	drafts   draftRepo.Repository
	books    bookRepo.Repository
	ledger   ledgerRepo.Repository
	profiles exportRepo.ProfileDirectory
	store    storage.ObjectStore
	tx       TxManager
	cache    cache.Cache
	queue    TaskEnqueuer

	fee            decimal.Decimal
	language       string
	fallbackAuthor string

	// flights serializes concurrent exports of the same draft by the
	// same owner; late callers share the first run's result.
	flights singleflight.Group
}

func NewExportService(
	drafts draftRepo.Repository,
	books bookRepo.Repository,
	ledger ledgerRepo.Repository,
	profiles exportRepo.ProfileDirectory,
	store storage.ObjectStore,
	tx TxManager,
	cacheClient cache.Cache,
	queue TaskEnqueuer,
	feeCredits int64,
	language string,
	fallbackAuthor string,
) *ExportService {
	return &ExportService{
		drafts:         drafts,
		books:          books,
		ledger:         ledger,
		profiles:       profiles,
		store:          store,
		tx:             tx,
		cache:          cacheClient,
		queue:          queue,
		fee:            decimal.NewFromInt(feeCredits),
		language:       language,
		fallbackAuthor: fallbackAuthor,
	}
}

func (s *ExportService) Export(ctx context.Context, draftID, ownerID uuid.UUID) (*model.ExportResult, error) {
	key := ownerID.String() + ":" + draftID.String()
	v, err, _ := s.flights.Do(key, func() (interface{}, error) {
		return s.export(ctx, draftID, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ExportResult), nil
}

func (s *ExportService) export(ctx context.Context, draftID, ownerID uuid.UUID) (*model.ExportResult, error) {
	draft, chapters, err := s.drafts.GetWithChapters(ctx, draftID)
	if err != nil {
		if errors.Is(err, draftModel.ErrDraftNotFound) {
			return nil, model.NewExportError(model.ErrCodeDraftNotFound, "draft not found", model.ErrDraftNotFound)
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft.OwnerID != ownerID {
		return nil, model.NewExportError(model.ErrCodeForbidden, "draft belongs to another owner", model.ErrForbidden)
	}
	if len(chapters) == 0 {
		return nil, model.NewExportError(model.ErrCodeEmptyDraft, "draft has no chapters", model.ErrEmptyDraft)
	}

	// Balance gate before any expensive or external work. The debit
	// itself re-checks inside the transaction, so a concurrent drain
	// between here and the commit still cannot overdraw.
	balance, err := s.ledger.GetBalance(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read credit balance: %w", err)
	}
	if balance.LessThan(s.fee) {
		return nil, model.NewExportError(model.ErrCodeInsufficientFunds, "not enough credits for export fee", model.ErrInsufficientFunds)
	}

	author := s.authorName(ctx, ownerID)

	data, err := s.buildArchive(draft, chapters, author)
	if err != nil {
		return nil, err
	}

	// Every attempt uploads under its own key. A cleanup task queued for
	// a failed attempt can then never remove the blob a later attempt
	// published for the same draft.
	objectKey := fmt.Sprintf("exports/%s/%s/%s.epub", ownerID, draftID, uuid.NewString())
	fileURL, err := s.store.Upload(ctx, objectKey, data, epub.MimeType)
	if err != nil {
		return nil, model.NewExportError(model.ErrCodeUploadFailed, "failed to upload archive", fmt.Errorf("%w: %v", model.ErrUploadFailed, err))
	}

	result, replacedURL, err := s.persist(ctx, draft, ownerID, author, fileURL)
	if err != nil {
		if errors.Is(err, ledgerModel.ErrInsufficientFunds) {
			// Lost the race against another debit. The uploaded object
			// is orphaned; have the worker remove it.
			s.enqueueOrphanCleanup(objectKey)
			return nil, model.NewExportError(model.ErrCodeInsufficientFunds, "not enough credits for export fee", model.ErrInsufficientFunds)
		}
		s.enqueueOrphanCleanup(objectKey)
		return nil, model.NewExportError(model.ErrCodePersistenceFailed, "failed to record exported book", fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err))
	}

	// An update left the previous archive unreferenced; hand it to the
	// worker as well.
	if key, ok := storage.ObjectKeyFromURL(replacedURL); ok {
		s.enqueueOrphanCleanup(key)
	}

	s.invalidateLibrary(ctx, ownerID)

	return result, nil
}

// buildArchive sanitizes every chapter in order and packages them.
func (s *ExportService) buildArchive(draft *draftModel.Draft, chapters []draftModel.Chapter, author string) ([]byte, error) {
	epubChapters := make([]epub.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		epubChapters = append(epubChapters, epub.Chapter{
			Title: ch.Title,
			Body:  sanitize.Sanitize(ch.RawContent),
		})
	}

	meta := epub.Metadata{
		Title:      draft.Title,
		Author:     author,
		Language:   s.language,
		Identifier: "urn:uuid:" + draft.ID.String(),
	}
	if draft.Synopsis != nil {
		meta.Description = *draft.Synopsis
	}

	data, err := epub.Write(epub.Assemble(meta, epubChapters))
	if err != nil {
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}
	return data, nil
}

func (s *ExportService) authorName(ctx context.Context, ownerID uuid.UUID) string {
	name, err := s.profiles.DisplayName(ctx, ownerID)
	if err != nil {
		logger.Warn("Falling back to default author name", map[string]interface{}{
			"owner_id": ownerID.String(),
			"error":    err.Error(),
		})
		return s.fallbackAuthor
	}
	if name == "" {
		return s.fallbackAuthor
	}
	return name
}

// persist upserts the book row and debits the export fee in a single
// transaction. The (owner, title) lookup takes a row lock, so two
// exports racing on the same identity serialize here. On the update
// path it also reports the file URL the book pointed at before, so the
// caller can retire that archive.
func (s *ExportService) persist(ctx context.Context, draft *draftModel.Draft, ownerID uuid.UUID, author, fileURL string) (*model.ExportResult, string, error) {
	var result model.ExportResult
	var replacedURL string

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.books.FindByOwnerAndTitleTx(ctx, tx, ownerID, draft.Title)
		if err != nil && !errors.Is(err, bookModel.ErrBookNotFound) {
			return err
		}

		var bookID uuid.UUID
		if existing != nil {
			replacedURL = existing.FilePath
			existing.Author = author
			existing.Description = draft.Synopsis
			existing.FilePath = fileURL
			existing.CoverURL = draft.CoverURL
			if err := s.books.UpdateExportTx(ctx, tx, existing); err != nil {
				return err
			}
			bookID = existing.ID
			result = model.ExportResult{BookID: bookID, Action: model.ActionUpdated}
		} else {
			book := &bookModel.Book{
				OwnerID:     ownerID,
				Title:       draft.Title,
				Author:      author,
				Description: draft.Synopsis,
				FilePath:    fileURL,
				CoverURL:    draft.CoverURL,
			}
			if err := s.books.CreateTx(ctx, tx, book); err != nil {
				return err
			}
			bookID = book.ID
			result = model.ExportResult{BookID: bookID, Action: model.ActionCreated}
		}

		return s.ledger.DebitTx(ctx, tx, ownerID, s.fee, ledgerModel.EntryKindExportFee, bookID.String())
	})
	if err != nil {
		return nil, "", err
	}
	return &result, replacedURL, nil
}

func (s *ExportService) enqueueOrphanCleanup(objectKey string) {
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(shared.CleanupOrphanArchivePayload{Key: objectKey})
	if err != nil {
		return
	}
	if _, err := s.queue.Enqueue(asynq.NewTask(shared.TypeCleanupOrphanArchive, payload)); err != nil {
		logger.Warn("Failed to enqueue orphan archive cleanup", map[string]interface{}{
			"key":   objectKey,
			"error": err.Error(),
		})
	}
}

func (s *ExportService) invalidateLibrary(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, bookService.LibraryCacheKey(ownerID)); err != nil {
		logger.Warn("Failed to invalidate library cache", map[string]interface{}{
			"owner_id": ownerID.String(),
			"error":    err.Error(),
		})
	}
}
