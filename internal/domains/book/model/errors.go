package model

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotOwner     = errors.New("caller does not own this book")
)
