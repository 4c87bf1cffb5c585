package repository

import "errors"

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("record already exists")

const pgUniqueViolation = "23505"
