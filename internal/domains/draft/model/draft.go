package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Draft is an author's in-progress manuscript. Chapters hang off it
// in an explicit reading order.
type Draft struct {
	ID       uuid.UUID      `json:"id" db:"id"`
	OwnerID  uuid.UUID      `json:"owner_id" db:"owner_id"`
	Title    string         `json:"title" db:"title"`
	Genre    *string        `json:"genre" db:"genre"`
	Synopsis *string        `json:"synopsis" db:"synopsis"`
	CoverURL *string        `json:"cover_url" db:"cover_url"`
	Tags     pq.StringArray `json:"tags" db:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Chapter belongs to exactly one draft. SortOrder is unique within the
// draft and defines both reading order and export order.
type Chapter struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DraftID    uuid.UUID `json:"draft_id" db:"draft_id"`
	Title      string    `json:"title" db:"title"`
	RawContent string    `json:"raw_content" db:"raw_content"`
	SortOrder  int       `json:"sort_order" db:"sort_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ========================================
// DTOs
// ========================================

type CreateDraftRequest struct {
	Title    string   `json:"title" binding:"required"`
	Genre    *string  `json:"genre"`
	Synopsis *string  `json:"synopsis"`
	CoverURL *string  `json:"cover_url"`
	Tags     []string `json:"tags"`
}

func (r CreateDraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Synopsis, validation.Length(0, 10000)),
		validation.Field(&r.Tags, validation.Length(0, 20)),
	)
}

type UpdateDraftRequest struct {
	Title    string   `json:"title" binding:"required"`
	Genre    *string  `json:"genre"`
	Synopsis *string  `json:"synopsis"`
	CoverURL *string  `json:"cover_url"`
	Tags     []string `json:"tags"`
}

func (r UpdateDraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Synopsis, validation.Length(0, 10000)),
	)
}

type CreateChapterRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	// SortOrder is optional; when omitted the chapter is appended.
	SortOrder *int `json:"sort_order"`
}

func (r CreateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.SortOrder, validation.Min(1)),
	)
}

type UpdateChapterRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

func (r UpdateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
	)
}

// DraftResponse carries a draft together with its ordered chapters.
type DraftResponse struct {
	Draft    Draft     `json:"draft"`
	Chapters []Chapter `json:"chapters"`
}
