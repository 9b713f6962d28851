package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidAmount      = errors.New("amount must be a positive integer")
	ErrAggregateUnderflow = errors.New("collect totals would become negative")
)
