package errors

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid")
	ErrConflict    = errors.New("conflict")
	ErrTooMany     = errors.New("too many requests")
	ErrInternal    = errors.New("internal")
	ErrParseFailed = errors.New("parse failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsParseFailed(err error) bool {
	return errors.Is(err, ErrParseFailed)
}
