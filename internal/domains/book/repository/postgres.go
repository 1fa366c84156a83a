package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell-backend/internal/domains/book/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) Repository {
	return &bookRepository{pool: pool}
}

const bookColumns = `id, owner_id, title, author, description, file_path, cover_url, progress, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	book := &model.Book{}
	err := row.Scan(
		&book.ID,
		&book.OwnerID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.FilePath,
		&book.CoverURL,
		&book.Progress,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *bookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	return books, nil
}

func (r *bookRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET progress = $2, updated_at = NOW() WHERE id = $1`,
		id, progress,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) FindByOwnerAndTitleTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, title string) (*model.Book, error) {
	// FOR UPDATE so two concurrent exports racing on the same identity
	// serialize on the row instead of both inserting.
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 AND title = $2 FOR UPDATE`

	book, err := scanBook(tx.QueryRow(ctx, query, ownerID, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by owner and title: %w", err)
	}

	return book, nil
}

func (r *bookRepository) CreateTx(ctx context.Context, tx pgx.Tx, book *model.Book) error {
	query := `
        INSERT INTO books (owner_id, title, author, description, file_path, cover_url, progress)
        VALUES ($1, $2, $3, $4, $5, $6, 0)
        RETURNING id, progress, created_at, updated_at
    `

	err := tx.QueryRow(
		ctx, query,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Description,
		book.FilePath,
		book.CoverURL,
	).Scan(&book.ID, &book.Progress, &book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// UpdateExportTx refreshes the deliverable fields of an existing book.
// Reading progress is deliberately not touched.
func (r *bookRepository) UpdateExportTx(ctx context.Context, tx pgx.Tx, book *model.Book) error {
	query := `
        UPDATE books
        SET author = $2, description = $3, file_path = $4, cover_url = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `

	err := tx.QueryRow(
		ctx, query,
		book.ID,
		book.Author,
		book.Description,
		book.FilePath,
		book.CoverURL,
	).Scan(&book.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}
