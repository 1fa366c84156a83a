package service

import (
	"context"

	"inkwell-backend/internal/domains/export/model"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
)

type ServiceInterface interface {
	// Export runs the full draft-to-book pipeline for one draft on
	// behalf of its owner.
	Export(ctx context.Context, draftID, ownerID uuid.UUID) (*model.ExportResult, error)
}

// TxManager abstracts pkg/database.WithTransaction so the service can
// be unit-tested without a live pool.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
