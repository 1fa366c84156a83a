package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	bookModel "inkwell-backend/internal/domains/book/model"
	bookRepo "inkwell-backend/internal/domains/book/repository"
	draftModel "inkwell-backend/internal/domains/draft/model"
	draftRepo "inkwell-backend/internal/domains/draft/repository"
	"inkwell-backend/internal/domains/export/model"
	ledgerModel "inkwell-backend/internal/domains/ledger/model"
	ledgerRepo "inkwell-backend/internal/domains/ledger/repository"
	"inkwell-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------------------------------------------
// fakes

type fakeDraftRepo struct {
	draftRepo.Repository

	mu       sync.Mutex
	draft    *draftModel.Draft
	chapters []draftModel.Chapter
	err      error
	gate     chan struct{}
	calls    int
}

func (f *fakeDraftRepo) GetWithChapters(ctx context.Context, id uuid.UUID) (*draftModel.Draft, []draftModel.Chapter, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.draft, f.chapters, nil
}

type fakeBookRepo struct {
	bookRepo.Repository

	mu       sync.Mutex
	existing *bookModel.Book
	created  []*bookModel.Book
	updated  []*bookModel.Book
}

func (f *fakeBookRepo) FindByOwnerAndTitleTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, title string) (*bookModel.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing == nil {
		return nil, bookModel.ErrBookNotFound
	}
	copied := *f.existing
	return &copied, nil
}

func (f *fakeBookRepo) CreateTx(ctx context.Context, tx pgx.Tx, book *bookModel.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book.ID = uuid.New()
	f.created = append(f.created, book)
	return nil
}

func (f *fakeBookRepo) UpdateExportTx(ctx context.Context, tx pgx.Tx, book *bookModel.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, book)
	return nil
}

type recordedDebit struct {
	ownerID   uuid.UUID
	amount    decimal.Decimal
	kind      ledgerModel.EntryKind
	reference string
}

type fakeLedgerRepo struct {
	ledgerRepo.Repository

	mu       sync.Mutex
	balance  decimal.Decimal
	debitErr error
	debits   []recordedDebit
}

func (f *fakeLedgerRepo) GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeLedgerRepo) DebitTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal, kind ledgerModel.EntryKind, reference string) error {
	if f.debitErr != nil {
		return f.debitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debits = append(f.debits, recordedDebit{ownerID: ownerID, amount: amount, kind: kind, reference: reference})
	return nil
}

type fakeProfiles struct {
	name string
	err  error
}

func (f *fakeProfiles) DisplayName(ctx context.Context, ownerID uuid.UUID) (string, error) {
	return f.name, f.err
}

type recordedUpload struct {
	key         string
	data        []byte
	contentType string
}

type fakeStore struct {
	mu        sync.Mutex
	uploadErr error
	uploads   []recordedUpload
	deleted   []string
}

func (f *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, recordedUpload{key: key, data: data, contentType: contentType})
	return "http://store.local/inkwell/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeTxManager struct {
	mu        sync.Mutex
	commitErr error
	calls     int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(pgx.Tx) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := fn(nil); err != nil {
		return err
	}
	return f.commitErr
}

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) { return false, nil }
func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return nil
}
func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Ping(ctx context.Context) error                         { return nil }

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

// ----------------------------------------------------------------------------
// harness

type exportFixture struct {
	svc     *ExportService
	drafts  *fakeDraftRepo
	books   *fakeBookRepo
	ledger  *fakeLedgerRepo
	store   *fakeStore
	tx      *fakeTxManager
	cache   *fakeCache
	queue   *fakeQueue
	ownerID uuid.UUID
	draftID uuid.UUID
}

func newFixture() *exportFixture {
	ownerID := uuid.New()
	draftID := uuid.New()
	synopsis := "A tale of two fakes."

	f := &exportFixture{
		drafts: &fakeDraftRepo{
			draft: &draftModel.Draft{
				ID:       draftID,
				OwnerID:  ownerID,
				Title:    "My Great Novel",
				Synopsis: &synopsis,
			},
			chapters: []draftModel.Chapter{
				{Title: "One", RawContent: "<p>First.</p>", SortOrder: 1},
				{Title: "Two", RawContent: "<p>Second.</p>", SortOrder: 2},
			},
		},
		books:   &fakeBookRepo{},
		ledger:  &fakeLedgerRepo{balance: decimal.NewFromInt(100)},
		store:   &fakeStore{},
		tx:      &fakeTxManager{},
		cache:   &fakeCache{},
		queue:   &fakeQueue{},
		ownerID: ownerID,
		draftID: draftID,
	}

	f.svc = NewExportService(
		f.drafts, f.books, f.ledger,
		&fakeProfiles{name: "Jane Writer"},
		f.store, f.tx, f.cache, f.queue,
		10, "en", "Unknown Author",
	)
	return f
}

// ----------------------------------------------------------------------------
// tests

func TestExport_CreatesBookAndDebitsFee(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.ActionCreated, result.Action)
	assert.NotEqual(t, uuid.Nil, result.BookID)

	require.Len(t, f.books.created, 1)
	book := f.books.created[0]
	assert.Equal(t, "My Great Novel", book.Title)
	assert.Equal(t, "Jane Writer", book.Author)
	assert.Equal(t, f.ownerID, book.OwnerID)
	assert.Contains(t, book.FilePath, fmt.Sprintf("exports/%s/%s/", f.ownerID, f.draftID))
	assert.Contains(t, book.FilePath, ".epub")

	require.Len(t, f.ledger.debits, 1)
	debit := f.ledger.debits[0]
	assert.Equal(t, f.ownerID, debit.ownerID)
	assert.True(t, decimal.NewFromInt(10).Equal(debit.amount))
	assert.Equal(t, ledgerModel.EntryKindExportFee, debit.kind)
	assert.Equal(t, result.BookID.String(), debit.reference)

	require.Equal(t, 1, f.store.uploadCount())
	assert.Equal(t, "application/epub+zip", f.store.uploads[0].contentType)

	assert.Contains(t, f.cache.deleted, fmt.Sprintf("library:%s", f.ownerID))
	assert.Empty(t, f.queue.tasks)
}

func TestExport_UploadedArchiveIsReadable(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	require.Equal(t, 1, f.store.uploadCount())
	data := f.store.uploads[0].data

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.NotEmpty(t, zr.File)
	assert.Equal(t, "mimetype", zr.File[0].Name)

	var chapterDocs int
	for _, file := range zr.File {
		if file.Name == "OEBPS/chapter_1.xhtml" || file.Name == "OEBPS/chapter_2.xhtml" {
			chapterDocs++
		}
	}
	assert.Equal(t, 2, chapterDocs)
}

func TestExport_SecondExportUpdatesInPlace(t *testing.T) {
	f := newFixture()

	first, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	// The book now exists under the same (owner, title) identity.
	f.books.existing = f.books.created[0]

	second, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.ActionCreated, first.Action)
	assert.Equal(t, model.ActionUpdated, second.Action)
	assert.Equal(t, first.BookID, second.BookID)

	assert.Len(t, f.books.created, 1)
	require.Len(t, f.books.updated, 1)

	// Each successful export debits the fee again.
	assert.Len(t, f.ledger.debits, 2)

	// The refreshed book points at the new archive; the one it replaced
	// is queued for removal.
	require.Equal(t, 2, f.store.uploadCount())
	assert.NotEqual(t, f.store.uploads[0].key, f.store.uploads[1].key)
	assert.Contains(t, f.books.updated[0].FilePath, f.store.uploads[1].key)

	require.Len(t, f.queue.tasks, 1)
	var payload shared.CleanupOrphanArchivePayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].Payload(), &payload))
	assert.Equal(t, f.store.uploads[0].key, payload.Key)
}

func TestExport_DraftNotFound(t *testing.T) {
	f := newFixture()
	f.drafts.err = draftModel.ErrDraftNotFound

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrDraftNotFound)
	assert.Equal(t, 0, f.store.uploadCount())
	assert.Equal(t, 0, f.tx.calls)
}

func TestExport_ForbiddenForNonOwner(t *testing.T) {
	f := newFixture()
	stranger := uuid.New()

	_, err := f.svc.Export(context.Background(), f.draftID, stranger)

	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, 0, f.store.uploadCount())
	assert.Empty(t, f.ledger.debits)
}

func TestExport_EmptyDraft(t *testing.T) {
	f := newFixture()
	f.drafts.chapters = nil

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrEmptyDraft)
	assert.Equal(t, 0, f.store.uploadCount())
	assert.Equal(t, 0, f.tx.calls)
	assert.Empty(t, f.ledger.debits)
}

func TestExport_InsufficientFundsBeforeAnySideEffect(t *testing.T) {
	f := newFixture()
	f.ledger.balance = decimal.NewFromInt(5)

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.Equal(t, 0, f.store.uploadCount())
	assert.Equal(t, 0, f.tx.calls)
	assert.Empty(t, f.ledger.debits)
}

func TestExport_UploadFailureChargesNothing(t *testing.T) {
	f := newFixture()
	f.store.uploadErr = errors.New("connection reset")

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrUploadFailed)
	assert.Equal(t, 0, f.tx.calls)
	assert.Empty(t, f.ledger.debits)
	assert.Empty(t, f.cache.deleted)
}

func TestExport_PersistenceFailureSchedulesCleanup(t *testing.T) {
	f := newFixture()
	f.tx.commitErr = errors.New("commit failed")

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrPersistenceFailed)
	assert.Empty(t, f.cache.deleted)

	// The uploaded blob is now orphaned; the worker gets asked to
	// remove it.
	require.Len(t, f.queue.tasks, 1)
	task := f.queue.tasks[0]
	assert.Equal(t, shared.TypeCleanupOrphanArchive, task.Type())

	var payload shared.CleanupOrphanArchivePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 1, f.store.uploadCount())
	assert.Equal(t, f.store.uploads[0].key, payload.Key)
}

func TestExport_RetryAfterFailureNeverLosesLiveArchive(t *testing.T) {
	f := newFixture()
	f.tx.commitErr = errors.New("commit failed")

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.ErrorIs(t, err, model.ErrPersistenceFailed)

	require.Len(t, f.queue.tasks, 1)
	var payload shared.CleanupOrphanArchivePayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].Payload(), &payload))

	f.tx.commitErr = nil
	result, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	// The retry published under a fresh key, so the queued cleanup
	// cannot touch the archive the book now references.
	require.Equal(t, 2, f.store.uploadCount())
	assert.NotEqual(t, payload.Key, f.store.uploads[1].key)

	live := f.books.created[len(f.books.created)-1]
	assert.Equal(t, result.BookID, live.ID)
	assert.NotContains(t, live.FilePath, payload.Key)
	assert.Contains(t, live.FilePath, f.store.uploads[1].key)

	// Only the failed attempt's blob was scheduled for deletion.
	assert.Len(t, f.queue.tasks, 1)
}

func TestExport_DebitRaceSurfacesInsufficientFunds(t *testing.T) {
	f := newFixture()
	// Pre-check passes, but another export drains the account before
	// the transactional debit runs.
	f.ledger.debitErr = ledgerModel.ErrInsufficientFunds

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)

	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.Len(t, f.queue.tasks, 1)
	assert.Empty(t, f.cache.deleted)
}

func TestExport_AuthorFallsBackWhenProfileEmpty(t *testing.T) {
	f := newFixture()
	f.svc.profiles = &fakeProfiles{name: ""}

	_, err := f.svc.Export(context.Background(), f.draftID, f.ownerID)
	require.NoError(t, err)

	require.Len(t, f.books.created, 1)
	assert.Equal(t, "Unknown Author", f.books.created[0].Author)

	// The archive metadata carries the same fallback.
	data := f.store.uploads[0].data
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, file := range zr.File {
		if file.Name != "OEBPS/content.opf" {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		opf, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Contains(t, string(opf), "Unknown Author")
	}
}

func TestExport_ConcurrentRequestsShareOneRun(t *testing.T) {
	f := newFixture()
	gate := make(chan struct{})
	f.drafts.gate = gate

	var wg sync.WaitGroup
	results := make([]*model.ExportResult, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Export(context.Background(), f.draftID, f.ownerID)
		}(i)
	}

	// Let the second caller reach the flight before the first run is
	// released.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// One pipeline run served both callers: one draft read, one upload,
	// one book, one debit.
	assert.Equal(t, 1, f.drafts.calls)
	assert.Equal(t, 1, f.store.uploadCount())
	assert.Len(t, f.books.created, 1)
	assert.Len(t, f.ledger.debits, 1)
	assert.Equal(t, results[0].BookID, results[1].BookID)
}
