// Package listquery implements the paginated, filterable list contract shared
// by every resource endpoint.
//
// Execute is a pure function over a snapshot: it never mutates its input and
// returns the same page for the same collection and query. Stages run in a
// fixed order and each one only narrows the candidate set:
//
//	filters -> date range -> search -> sort -> total -> page slice
package listquery

import (
	"sort"
	"strings"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// Execute runs q against records and returns one page plus metadata
func Execute(records []domain.Record, spec resource.Spec, q domain.Query) (domain.Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if err := q.Validate(); err != nil {
		return domain.Page{}, err
	}
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		// Valid but empty range
		return emptyPage(q, 0), nil
	}

	candidates := make([]domain.Record, len(records))
	copy(candidates, records)

	candidates = applyFilters(candidates, q.Filters)

	if q.StartDate != nil || q.EndDate != nil {
		candidates = keep(candidates, func(r domain.Record) bool {
			return WithinRange(r, spec.TimestampField, q.StartDate, q.EndDate)
		})
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		candidates = keep(candidates, func(r domain.Record) bool {
			return MatchesSearch(r, spec.Search, needle)
		})
	}

	if q.Sort != "" {
		sortRecords(candidates, q.Sort, q.Order == domain.SortDesc)
	}

	total := len(candidates)
	if total == 0 || q.Page-1 > (total-1)/q.Limit {
		return emptyPage(q, total), nil
	}
	start := q.Offset()
	end := total
	if q.Limit < total-start {
		end = start + q.Limit
	}

	return domain.Page{
		Items:      candidates[start:end],
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: domain.TotalPages(total, q.Limit),
	}, nil
}

func emptyPage(q domain.Query, total int) domain.Page {
	return domain.Page{
		Items:      []domain.Record{},
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: domain.TotalPages(total, q.Limit),
	}
}

// applyFilters applies the conjunctive equality filters in field-name order
func applyFilters(records []domain.Record, filters map[string]string) []domain.Record {
	if len(filters) == 0 {
		return records
	}
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		raw := filters[field]
		records = keep(records, func(r domain.Record) bool {
			return MatchesFilter(r, field, raw)
		})
	}
	return records
}

// keep filters in place; records must already be a private copy
func keep(records []domain.Record, pred func(domain.Record) bool) []domain.Record {
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
