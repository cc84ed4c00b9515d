package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrTooMany         = errors.New("too many requests")
	ErrInternal        = errors.New("internal")
	ErrNotInitialized  = errors.New("collection not initialized")
	ErrMalformedInput  = errors.New("malformed input")
	ErrParseFailure    = errors.New("parse failure")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrCIUnavailable   = errors.New("ci backend unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
