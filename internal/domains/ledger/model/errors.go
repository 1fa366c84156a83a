package model

import "errors"

var (
	ErrAccountNotFound   = errors.New("credit account not found")
	ErrInsufficientFunds = errors.New("insufficient credit balance")
)
