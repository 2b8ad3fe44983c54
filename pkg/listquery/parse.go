package listquery

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// Reserved query parameters; anything else is a filter candidate
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSearch    = "search"
	ParamStartDate = "startDate"
	ParamEndDate   = "endDate"
	ParamSort      = "sort"
	ParamOrder     = "order"
)

// ParseQuery builds a query from URL parameters for the given resource.
// Only the resource's declared filter fields are picked up; other parameters
// are ignored.
func ParseQuery(values url.Values, spec resource.Spec) (domain.Query, error) {
	q := domain.DefaultQuery()
	q.Limit = spec.DefaultLimit
	if q.Limit < 1 {
		q.Limit = domain.DefaultLimit
	}

	if raw, ok := first(values, ParamPage); ok && raw != "" {
		q.Page = clampPositive(raw)
	}
	if raw, ok := first(values, ParamLimit); ok && raw != "" {
		q.Limit = clampPositive(raw)
	}
	if spec.MaxLimit > 0 && q.Limit > spec.MaxLimit {
		q.Limit = spec.MaxLimit
	}

	q.Search, _ = first(values, ParamSearch)

	for _, field := range spec.Filters {
		if v, ok := first(values, field); ok && v != "" {
			q.Filters[field] = v
		}
	}

	start, end, err := ParseDateRange(values)
	if err != nil {
		return domain.Query{}, err
	}
	q.StartDate, q.EndDate = start, end

	if sortField, ok := first(values, ParamSort); ok && sortField != "" {
		if !spec.IsSortable(sortField) {
			return domain.Query{}, domain.InvalidQuery("cannot sort %s by %q", spec.Name, sortField)
		}
		q.Sort = sortField
	}
	if order, ok := first(values, ParamOrder); ok && order != "" {
		switch domain.SortOrder(strings.ToLower(order)) {
		case domain.SortAsc:
			q.Order = domain.SortAsc
		case domain.SortDesc:
			q.Order = domain.SortDesc
		default:
			return domain.Query{}, domain.InvalidQuery("order must be asc or desc, got %q", order)
		}
	}

	return q, nil
}

// ParseDateRange reads the inclusive startDate/endDate bounds. Either may be
// nil. A bare calendar date as endDate covers the whole day.
func ParseDateRange(values url.Values) (start, end *time.Time, err error) {
	if raw, ok := first(values, ParamStartDate); ok && raw != "" {
		t, err := domain.ParseTimestamp(raw)
		if err != nil {
			return nil, nil, domain.InvalidQuery("startDate %q is not a valid date", raw)
		}
		start = &t
	}
	if raw, ok := first(values, ParamEndDate); ok && raw != "" {
		t, err := domain.ParseTimestamp(raw)
		if err != nil {
			return nil, nil, domain.InvalidQuery("endDate %q is not a valid date", raw)
		}
		if domain.IsDateOnly(raw) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = &t
	}
	return start, end, nil
}

// first returns the trimmed first value for key
func first(values url.Values, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return strings.TrimSpace(v[0]), true
}

// clampPositive parses a page or limit; non-numeric and non-positive values
// clamp to 1, numbers too large for an int clamp to math.MaxInt
func clampPositive(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}
