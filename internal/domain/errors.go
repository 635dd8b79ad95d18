package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidProduct = errors.New("invalid product")
	ErrEmptyCart      = errors.New("cart is empty")
)
