package job

import (
	"context"
	"encoding/json"
	"fmt"

	"inkwell-backend/internal/infrastructure/storage"
	"inkwell-backend/internal/shared"
	"inkwell-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// CleanupOrphanHandler removes archives no book references anymore:
// uploads whose export transaction never committed, and archives a
// re-export replaced. Every attempt uploads under a fresh key, so a
// queued key can never become referenced again. An orphaned blob is
// harmless but costs storage; deletion is retried by the queue on
// failure.
type CleanupOrphanHandler struct {
	store storage.ObjectStore
}

func NewCleanupOrphanHandler(store storage.ObjectStore) *CleanupOrphanHandler {
	return &CleanupOrphanHandler{store: store}
}

func (h *CleanupOrphanHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.CleanupOrphanArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode cleanup payload: %w", err)
	}

	if err := h.store.Delete(ctx, payload.Key); err != nil {
		return fmt.Errorf("failed to delete orphan archive %s: %w", payload.Key, err)
	}

	logger.Info("Removed orphan archive", map[string]interface{}{
		"key": payload.Key,
	})
	return nil
}
