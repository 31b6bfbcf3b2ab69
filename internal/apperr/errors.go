package apperr

import "errors"

// ErrInvalidPosition is returned when a list position does not address an entry.
var ErrInvalidPosition = errors.New("invalid position")
