package model

import "github.com/google/uuid"

// ExportAction tells the caller whether the export created a new
// library entry or refreshed an existing one.
type ExportAction string

const (
	ActionCreated ExportAction = "created"
	ActionUpdated ExportAction = "updated"
)

// ExportResult is the success payload of an export run.
type ExportResult struct {
	BookID uuid.UUID    `json:"book_id"`
	Action ExportAction `json:"action"`
}
