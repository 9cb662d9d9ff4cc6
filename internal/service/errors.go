package service

import "errors"

var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
