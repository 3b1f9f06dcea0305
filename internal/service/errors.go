package service

import "errors"

var (
	ErrNotFound             = errors.New("error not found")
	ErrEmailTaken           = errors.New("error email already registered")
	ErrInvalidCredentials   = errors.New("error invalid email or password")
	ErrAccessDenied         = errors.New("error access denied")
	ErrInsufficientQuantity = errors.New("error insufficient holding quantity")
	ErrCurrencyMismatch     = errors.New("error transaction currency differs from holding currency")
)
