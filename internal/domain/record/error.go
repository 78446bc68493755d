package record

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrForbidden     = errors.New("operation not permitted")
	ErrQuotaExceeded = errors.New("free plan script limit reached")
	ErrInvalidInput  = errors.New("invalid input")
)
