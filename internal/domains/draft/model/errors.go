package model

import "errors"

var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNotOwner        = errors.New("caller does not own this draft")
)
