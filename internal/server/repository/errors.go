package repository

import "errors"

// ErrNotFound indicates the requested row does not exist for the owner.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail indicates a registration attempt with a taken email.
var ErrDuplicateEmail = errors.New("email already registered")
