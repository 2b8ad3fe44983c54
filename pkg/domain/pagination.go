package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultPage     = 1
	DefaultLimit    = 10
	DefaultMaxLimit = 1000
)

// SortOrder is the direction of an optional sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is a parsed list query specification
type Query struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`

	// Exact-match filters, field name -> raw query value
	Filters map[string]string `json:"filters,omitempty"`

	// Inclusive bounds on the resource timestamp field
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	Sort  string    `json:"sort,omitempty"`
	Order SortOrder `json:"order,omitempty"`
}

// Page is the result of a list query
type Page struct {
	Items      []Record `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}

// DefaultQuery returns a query with default paging and no filters
func DefaultQuery() Query {
	return Query{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Filters: map[string]string{},
		Order:   SortAsc,
	}
}

// Offset is the index of the first item on the requested page. It saturates
// at math.MaxInt instead of overflowing for very large pages.
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Validate checks a query built outside the HTTP parser
func (q Query) Validate() error {
	if q.Page < 1 {
		return InvalidQuery("page must be at least 1")
	}
	if q.Limit < 1 {
		return InvalidQuery("limit must be at least 1")
	}
	if q.Order != "" && q.Order != SortAsc && q.Order != SortDesc {
		return InvalidQuery("order must be %q or %q", SortAsc, SortDesc)
	}
	return nil
}

// TotalPages is ceil(total/limit), 0 for an empty result
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

func (p Page) String() string {
	return fmt.Sprintf("page %d/%d (%d of %d items)", p.Page, p.TotalPages, len(p.Items), p.Total)
}
