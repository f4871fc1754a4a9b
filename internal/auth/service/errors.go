package service

import "errors"

// Sentinel errors for the auth service; the HTTP layer maps them to status codes.
var (
	ErrEmailAlreadyRegistered  = errors.New("email already registered")
	ErrMobileAlreadyRegistered = errors.New("mobile number already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrAccountLocked           = errors.New("account locked")
	ErrAccountInactive         = errors.New("account inactive")
	ErrUserNotFound            = errors.New("user not found")
	// ErrValidation wraps input validation failures so the HTTP layer can
	// report them as bad requests.
	ErrValidation = errors.New("invalid input")
)
