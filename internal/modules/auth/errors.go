package auth

import "errors"

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
