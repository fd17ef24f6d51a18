package domain

import (
	"fmt"
	"math"
	"strings"
)

// MaxPageSize bounds PageRequest.Size.
const MaxPageSize = 1000

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// ParseDirection accepts "asc"/"desc" in any case. An empty string means ASC.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ASC):
		return ASC, nil
	case string(DESC):
		return DESC, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of sort keys. Earlier orders take precedence,
// later ones break ties.
type Sort []Order

// SortBy sorts ascending by each property in turn.
func SortBy(properties ...string) Sort {
	return SortByDirection(ASC, properties...)
}

func SortByDirection(dir Direction, properties ...string) Sort {
	s := make(Sort, 0, len(properties))
	for _, p := range properties {
		s = append(s, Order{Property: p, Direction: dir})
	}
	return s
}

// And returns a new Sort with other's orders appended.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

func (s Sort) IsUnsorted() bool {
	return len(s) == 0
}

type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// PageOf builds an unsorted request for the zero-based page index.
func PageOf(page, size int) PageRequest {
	return PageRequest{Page: page, Size: size}
}

func PageOfSorted(page, size int, sort Sort) PageRequest {
	return PageRequest{Page: page, Size: size, Sort: sort}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page index must not be negative", ErrInvalidPageRequest)
	}
	if p.Size < 1 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidPageRequest)
	}
	if p.Size > MaxPageSize {
		return fmt.Errorf("%w: page size must not exceed %d", ErrInvalidPageRequest, MaxPageSize)
	}
	if p.Page > math.MaxInt/p.Size {
		return fmt.Errorf("%w: page index %d is out of range", ErrInvalidPageRequest, p.Page)
	}
	return nil
}

type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"total_elements"`
	TotalPages       int   `json:"total_pages"`
	NumberOfElements int   `json:"number_of_elements"`
}

// NewPage wraps one slice of a result set. total is the size of the whole
// filtered result set, not of content.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = make([]T, 0)
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:          content,
		Number:           req.Page,
		Size:             req.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
	}
}

func (p Page[T]) IsFirst() bool {
	return p.Number == 0
}

func (p Page[T]) IsLast() bool {
	return !p.HasNext()
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}
