package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"inkwell-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	deleteErr error
	deleted   []string
}

func (s *stubStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func cleanupTask(t *testing.T, key string) *asynq.Task {
	t.Helper()

	payload, err := json.Marshal(shared.CleanupOrphanArchivePayload{Key: key})
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeCleanupOrphanArchive, payload)
}

func TestCleanupOrphan_DeletesArchive(t *testing.T) {
	store := &stubStore{}
	h := NewCleanupOrphanHandler(store)

	err := h.ProcessTask(context.Background(), cleanupTask(t, "exports/a/b.epub"))

	require.NoError(t, err)
	assert.Equal(t, []string{"exports/a/b.epub"}, store.deleted)
}

func TestCleanupOrphan_DeleteFailureRetriable(t *testing.T) {
	store := &stubStore{deleteErr: errors.New("bucket unavailable")}
	h := NewCleanupOrphanHandler(store)

	err := h.ProcessTask(context.Background(), cleanupTask(t, "exports/a/b.epub"))

	// Returning the error hands the task back to the queue for retry.
	assert.Error(t, err)
}

func TestCleanupOrphan_BadPayload(t *testing.T) {
	store := &stubStore{}
	h := NewCleanupOrphanHandler(store)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeCleanupOrphanArchive, []byte("{broken")))

	assert.Error(t, err)
	assert.Empty(t, store.deleted)
}
