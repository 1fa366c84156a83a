package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Book is a finished, exported deliverable sitting in the reader's
// library. Identity rule: the same (owner_id, title) pair always maps
// to the same book row; re-exporting an unchanged draft updates it
// in place instead of creating a duplicate.
type Book struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	Description *string   `json:"description" db:"description"`
	FilePath    string    `json:"file_path" db:"file_path"`
	CoverURL    *string   `json:"cover_url" db:"cover_url"`

	// Progress is the reading position in percent. Reset to 0 when the
	// book is first created, left untouched when an export updates it.
	Progress int `json:"progress" db:"progress"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProgressRequest struct {
	Progress int `json:"progress"`
}

func (r UpdateProgressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Progress, validation.Min(0), validation.Max(100)),
	)
}
