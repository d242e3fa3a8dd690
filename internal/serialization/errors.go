package serialization

import "errors"

var (
	ErrInvalidValue = errors.New("serialization: invalid value")
	ErrNotMapping   = errors.New("serialization: document is not a mapping")
)
