package types

import "errors"

var (
	// ErrAllModelsFailed is returned when every fallback candidate failed.
	ErrAllModelsFailed = errors.New("all candidate models failed")

	ErrInvalidMimeType = errors.New("only PDF uploads are supported")
	ErrEmptyQuery      = errors.New("query must not be empty")
)
