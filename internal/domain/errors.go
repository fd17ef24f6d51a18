package domain

import "errors"

var (
	ErrFlightNotFound     = errors.New("flight not found")
	ErrInvalidPageRequest = errors.New("invalid page request")
	ErrUnknownSortField   = errors.New("unknown sort field")
)
