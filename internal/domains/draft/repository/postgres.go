package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell-backend/internal/domains/draft/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type draftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) Repository {
	return &draftRepository{pool: pool}
}

// Create inserts a new draft record.
func (r *draftRepository) Create(ctx context.Context, draft *model.Draft) error {
	query := `
        INSERT INTO drafts (owner_id, title, genre, synopsis, cover_url, tags)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		draft.OwnerID,
		draft.Title,
		draft.Genre,
		draft.Synopsis,
		draft.CoverURL,
		draft.Tags,
	).Scan(&draft.ID, &draft.CreatedAt, &draft.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	return nil
}

func (r *draftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Draft, error) {
	query := `
        SELECT id, owner_id, title, genre, synopsis, cover_url, tags, created_at, updated_at
        FROM drafts
        WHERE id = $1
    `

	draft := &model.Draft{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&draft.ID,
		&draft.OwnerID,
		&draft.Title,
		&draft.Genre,
		&draft.Synopsis,
		&draft.CoverURL,
		&draft.Tags,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return draft, nil
}

// GetWithChapters reads the draft plus its chapters in reading order.
func (r *draftRepository) GetWithChapters(ctx context.Context, id uuid.UUID) (*model.Draft, []model.Chapter, error) {
	draft, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	query := `
        SELECT id, draft_id, title, raw_content, sort_order, created_at, updated_at
        FROM chapters
        WHERE draft_id = $1
        ORDER BY sort_order ASC
    `

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var ch model.Chapter
		err := rows.Scan(
			&ch.ID,
			&ch.DraftID,
			&ch.Title,
			&ch.RawContent,
			&ch.SortOrder,
			&ch.CreatedAt,
			&ch.UpdatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read chapters: %w", err)
	}

	return draft, chapters, nil
}

func (r *draftRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Draft, error) {
	query := `
        SELECT id, owner_id, title, genre, synopsis, cover_url, tags, created_at, updated_at
        FROM drafts
        WHERE owner_id = $1
        ORDER BY updated_at DESC
    `

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []model.Draft
	for rows.Next() {
		var d model.Draft
		err := rows.Scan(
			&d.ID,
			&d.OwnerID,
			&d.Title,
			&d.Genre,
			&d.Synopsis,
			&d.CoverURL,
			&d.Tags,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}

	return drafts, nil
}

func (r *draftRepository) Update(ctx context.Context, draft *model.Draft) error {
	query := `
        UPDATE drafts
        SET title = $2, genre = $3, synopsis = $4, cover_url = $5, tags = $6, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		draft.ID,
		draft.Title,
		draft.Genre,
		draft.Synopsis,
		draft.CoverURL,
		draft.Tags,
	).Scan(&draft.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrDraftNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return nil
}

func (r *draftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Chapters go with the draft (ON DELETE CASCADE).
	tag, err := r.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDraftNotFound
	}
	return nil
}

// CreateChapter inserts a chapter. A nil/zero SortOrder appends after
// the current last chapter.
func (r *draftRepository) CreateChapter(ctx context.Context, chapter *model.Chapter) error {
	query := `
        INSERT INTO chapters (draft_id, title, raw_content, sort_order)
        VALUES (
            $1, $2, $3,
            CASE WHEN $4 > 0 THEN $4
                 ELSE (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM chapters WHERE draft_id = $1)
            END
        )
        RETURNING id, sort_order, created_at, updated_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		chapter.DraftID,
		chapter.Title,
		chapter.RawContent,
		chapter.SortOrder,
	).Scan(&chapter.ID, &chapter.SortOrder, &chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	return nil
}

func (r *draftRepository) GetChapter(ctx context.Context, id uuid.UUID) (*model.Chapter, error) {
	query := `
        SELECT id, draft_id, title, raw_content, sort_order, created_at, updated_at
        FROM chapters
        WHERE id = $1
    `

	ch := &model.Chapter{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ch.ID,
		&ch.DraftID,
		&ch.Title,
		&ch.RawContent,
		&ch.SortOrder,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrChapterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	return ch, nil
}

func (r *draftRepository) UpdateChapter(ctx context.Context, chapter *model.Chapter) error {
	query := `
        UPDATE chapters
        SET title = $2, raw_content = $3, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `

	err := r.pool.QueryRow(ctx, query, chapter.ID, chapter.Title, chapter.RawContent).
		Scan(&chapter.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrChapterNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update chapter: %w", err)
	}

	return nil
}

func (r *draftRepository) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChapterNotFound
	}
	return nil
}
