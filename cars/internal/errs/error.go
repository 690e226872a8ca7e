package errs

import (
	"errors"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrCarExists   = errors.New("car already exists")
	ErrInvalidRate = errors.New("rate is out of range")
	ErrCarNotFound = errors.New("car not found")
)

type ErrorResponse struct {
	Message string `json:"message"`
}
