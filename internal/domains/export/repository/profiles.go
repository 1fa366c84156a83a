package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileDirectory resolves an owner's display name for the package
// metadata. Account data is owned by the external auth service; this
// is a read-only view of it.
type ProfileDirectory interface {
	// DisplayName returns "" (no error) when the owner has no profile
	// or no name; callers apply their own fallback.
	DisplayName(ctx context.Context, ownerID uuid.UUID) (string, error)
}

type profileDirectory struct {
	pool *pgxpool.Pool
}

func NewProfileDirectory(pool *pgxpool.Pool) ProfileDirectory {
	return &profileDirectory{pool: pool}
}

func (r *profileDirectory) DisplayName(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var name *string
	err := r.pool.QueryRow(ctx,
		`SELECT display_name FROM users WHERE id = $1`,
		ownerID,
	).Scan(&name)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read display name: %w", err)
	}

	if name == nil {
		return "", nil
	}
	return *name, nil
}
