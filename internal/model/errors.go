package model

import "errors"

// Lookup errors shared by repositories and services.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrSessionNotFound = errors.New("session not found")
)

// ErrUnauthenticated means an operation needed an active session and there was none.
var ErrUnauthenticated = errors.New("user not logged in")
