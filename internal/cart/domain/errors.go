package domain

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 999")
	ErrInvalidItem     = errors.New("item needs an id and a non-negative price")
	ErrInvalidAddress  = errors.New("address is missing required fields")
	ErrUnknownRate     = errors.New("shipping rate was not offered")
	ErrUnknownCommand  = errors.New("unknown cart command")
)
