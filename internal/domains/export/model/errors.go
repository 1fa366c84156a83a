package model

import (
	"errors"
	"fmt"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeDraftNotFound     = "EXP001"
	ErrCodeForbidden         = "EXP002"
	ErrCodeEmptyDraft        = "EXP003"
	ErrCodeInsufficientFunds = "EXP004"
	ErrCodeUploadFailed      = "EXP005"
	ErrCodePersistenceFailed = "EXP006"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
// The first four are validated before any side effect. UploadFailed
// leaves the balance untouched and may be retried by the caller.
// PersistenceFailed means the archive was uploaded but the commit
// failed: the blob is orphaned, the fee was not debited.
var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrForbidden         = errors.New("caller does not own this draft")
	ErrEmptyDraft        = errors.New("draft has no chapters")
	ErrInsufficientFunds = errors.New("balance does not cover the export fee")
	ErrUploadFailed      = errors.New("archive upload failed")
	ErrPersistenceFailed = errors.New("export could not be persisted")
)

// ExportError carries a stable code alongside the sentinel.
type ExportError struct {
	Code    string
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func NewExportError(code, message string, err error) *ExportError {
	return &ExportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
