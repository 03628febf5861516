package dictionary

import "errors"

var (
	// ErrAllocation is returned when the buffer for a dictionary cannot be reserved.
	ErrAllocation = errors.New("dictionary: buffer allocation failed")

	// ErrFormat is returned when a blob fails structural validation.
	ErrFormat = errors.New("dictionary: malformed blob")
)
