package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("missing configuration")
	ErrDelivery      = errors.New("delivery failed")
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidInput  = errors.New("invalid input")
)
