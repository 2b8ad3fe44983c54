package listquery

import (
	"fmt"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

var testSpec = resource.Spec{
	Name:           "logs",
	TimestampField: "timestamp",
	DefaultLimit:   10,
	MaxLimit:       100,
	Filters:        []string{"level", "channel", "userId", "retries"},
	Search:         []string{"message", "recipient"},
	Sortable:       []string{"level", "retries"},
}

func makeLogs(n int) []domain.Record {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	levels := []string{"info", "warn", "error"}
	records := make([]domain.Record, n)
	for i := 0; i < n; i++ {
		records[i] = domain.Record{
			"id":        fmt.Sprintf("log-%02d", i+1),
			"timestamp": base.Add(time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
			"level":     levels[i%len(levels)],
			"channel":   "sms",
			"userId":    fmt.Sprintf("user-%d", i%4),
			"retries":   float64(i % 2),
			"message":   fmt.Sprintf("Message %d delivered", i+1),
			"recipient": "+1555000" + fmt.Sprintf("%04d", i),
		}
	}
	return records
}

func run(t *testing.T, records []domain.Record, rawQuery string) domain.Page {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	q, err := ParseQuery(values, testSpec)
	require.NoError(t, err)
	page, err := Execute(records, testSpec, q)
	require.NoError(t, err)
	return page
}

func TestExecute_Pagination(t *testing.T) {
	records := makeLogs(25)

	tests := []struct {
		name          string
		query         string
		expectedItems int
		expectedPage  int
		expectedLimit int
		expectedPages int
		firstID       string
	}{
		{
			name:          "defaults",
			query:         "",
			expectedItems: 10,
			expectedPage:  1,
			expectedLimit: 10,
			expectedPages: 3,
			firstID:       "log-01",
		},
		{
			name:          "second page",
			query:         "page=2&limit=10",
			expectedItems: 10,
			expectedPage:  2,
			expectedLimit: 10,
			expectedPages: 3,
			firstID:       "log-11",
		},
		{
			name:          "last partial page",
			query:         "page=3&limit=10",
			expectedItems: 5,
			expectedPage:  3,
			expectedLimit: 10,
			expectedPages: 3,
			firstID:       "log-21",
		},
		{
			name:          "beyond last page",
			query:         "page=5&limit=10",
			expectedItems: 0,
			expectedPage:  5,
			expectedLimit: 10,
			expectedPages: 3,
		},
		{
			name:          "page whose offset would overflow",
			query:         "page=4611686018427387905&limit=4",
			expectedItems: 0,
			expectedPage:  4611686018427387905,
			expectedLimit: 4,
			expectedPages: 7,
		},
		{
			name:          "max int page",
			query:         "page=9223372036854775807&limit=10",
			expectedItems: 0,
			expectedPage:  math.MaxInt,
			expectedLimit: 10,
			expectedPages: 3,
		},
		{
			name:          "page too large to parse is past the end",
			query:         "page=99999999999999999999",
			expectedItems: 0,
			expectedPage:  math.MaxInt,
			expectedLimit: 10,
			expectedPages: 3,
		},
		{
			name:          "non-numeric limit clamps to one",
			query:         "limit=abc",
			expectedItems: 1,
			expectedPage:  1,
			expectedLimit: 1,
			expectedPages: 25,
			firstID:       "log-01",
		},
		{
			name:          "negative limit and page clamp to one",
			query:         "limit=-3&page=0",
			expectedItems: 1,
			expectedPage:  1,
			expectedLimit: 1,
			expectedPages: 25,
			firstID:       "log-01",
		},
		{
			name:          "limit above max clamps to max",
			query:         "limit=5000",
			expectedItems: 25,
			expectedPage:  1,
			expectedLimit: 100,
			expectedPages: 1,
			firstID:       "log-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := run(t, records, tt.query)

			assert.Len(t, page.Items, tt.expectedItems)
			assert.Equal(t, 25, page.Total)
			assert.Equal(t, tt.expectedPage, page.Page)
			assert.Equal(t, tt.expectedLimit, page.Limit)
			assert.Equal(t, tt.expectedPages, page.TotalPages)
			assert.NotNil(t, page.Items)
			if tt.firstID != "" {
				assert.Equal(t, tt.firstID, page.Items[0].ID())
			}
		})
	}
}

func TestExecute_PageSizeInvariant(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 25, 99} {
		records := makeLogs(total)
		for _, limit := range []int{1, 3, 10, 50} {
			for page := 1; page <= 6; page++ {
				p := run(t, records, fmt.Sprintf("page=%d&limit=%d", page, limit))

				expected := total - (page-1)*limit
				if expected < 0 {
					expected = 0
				}
				if expected > limit {
					expected = limit
				}
				assert.Len(t, p.Items, expected, "total=%d limit=%d page=%d", total, limit, page)
				assert.LessOrEqual(t, len(p.Items), limit)
				assert.Equal(t, (total+limit-1)/limit, p.TotalPages)
				if page > p.TotalPages {
					assert.Empty(t, p.Items)
				}
			}
		}
	}
}

func TestExecute_Filters(t *testing.T) {
	users := []domain.Record{
		{"id": "1", "role": "admin", "status": "active", "timestamp": "2024-01-01T00:00:00Z"},
		{"id": "2", "role": "developer", "status": "active", "timestamp": "2024-01-02T00:00:00Z"},
		{"id": "3", "role": "viewer", "status": "suspended", "timestamp": "2024-01-03T00:00:00Z"},
		{"id": "4", "role": "developer", "status": "invited", "timestamp": "2024-01-04T00:00:00Z"},
	}
	spec := resource.Spec{
		Name:           "users",
		TimestampField: "timestamp",
		DefaultLimit:   10,
		MaxLimit:       100,
		Filters:        []string{"role", "status"},
		Search:         []string{"name"},
	}

	tests := []struct {
		name        string
		query       string
		expectedIDs []string
	}{
		{name: "single match", query: "role=admin", expectedIDs: []string{"1"}},
		{name: "two matches", query: "role=developer", expectedIDs: []string{"2", "4"}},
		{name: "conjunctive", query: "role=developer&status=active", expectedIDs: []string{"2"}},
		{name: "unknown value is empty", query: "role=superuser", expectedIDs: []string{}},
		{name: "exact match is case sensitive", query: "role=Admin", expectedIDs: []string{}},
		{name: "undeclared field ignored", query: "id=3", expectedIDs: []string{"1", "2", "3", "4"}},
		{name: "empty value ignored", query: "role=", expectedIDs: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			q, err := ParseQuery(values, spec)
			require.NoError(t, err)

			page, err := Execute(users, spec, q)
			require.NoError(t, err)

			ids := make([]string, 0, len(page.Items))
			for _, r := range page.Items {
				ids = append(ids, r.ID())
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, len(tt.expectedIDs), page.Total)
		})
	}
}

func TestExecute_FilterConjunctionIsSubset(t *testing.T) {
	records := makeLogs(30)

	onlyA := run(t, records, "level=info&limit=100")
	both := run(t, records, "level=info&userId=user-0&limit=100")

	idsA := map[string]bool{}
	for _, r := range onlyA.Items {
		idsA[r.ID()] = true
	}
	for _, r := range both.Items {
		assert.True(t, idsA[r.ID()], "record %s missing from single-filter result", r.ID())
	}
	assert.LessOrEqual(t, both.Total, onlyA.Total)
}

func TestExecute_NumericFilter(t *testing.T) {
	records := makeLogs(10)

	page := run(t, records, "retries=1&limit=100")
	assert.Equal(t, 5, page.Total)

	page = run(t, records, "retries=one&limit=100")
	assert.Equal(t, 0, page.Total)
}

func TestExecute_Search(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "timestamp": "2024-01-01T00:00:00Z", "message": "WhatsApp template approved"},
		{"id": "2", "timestamp": "2024-01-02T00:00:00Z", "message": "SMS delivered", "recipient": "+15550001"},
		{"id": "3", "timestamp": "2024-01-03T00:00:00Z", "message": "Voice call failed"},
		{"id": "4", "timestamp": "2024-01-04T00:00:00Z", "message": 42},
	}

	tests := []struct {
		query       string
		expectedIDs []string
	}{
		{query: "search=whats", expectedIDs: []string{"1"}},
		{query: "search=WHATSAPP", expectedIDs: []string{"1"}},
		{query: "search=e", expectedIDs: []string{"1", "2", "3"}},
		{query: "search=5550001", expectedIDs: []string{"2"}},
		{query: "search=42", expectedIDs: []string{}},
		{query: "search=nothing-like-this", expectedIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := run(t, records, tt.query)
			ids := make([]string, 0, len(page.Items))
			for _, r := range page.Items {
				ids = append(ids, r.ID())
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestExecute_DateRange(t *testing.T) {
	records := makeLogs(10) // 2024-03-01 .. 2024-03-10 at 12:00 UTC

	tests := []struct {
		name          string
		query         string
		expectedTotal int
	}{
		{name: "start only", query: "startDate=2024-03-06", expectedTotal: 5},
		{name: "end only date covers whole day", query: "endDate=2024-03-03", expectedTotal: 3},
		{name: "inclusive both", query: "startDate=2024-03-02&endDate=2024-03-04", expectedTotal: 3},
		{name: "datetime bounds are exact", query: "startDate=2024-03-02T12:00:00Z&endDate=2024-03-02T12:00:00Z", expectedTotal: 1},
		{name: "reversed range is empty", query: "startDate=2024-03-09&endDate=2024-03-01", expectedTotal: 0},
		{name: "outside data", query: "startDate=2025-01-01", expectedTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := run(t, records, tt.query)
			assert.Equal(t, tt.expectedTotal, page.Total)
		})
	}
}

func TestExecute_MissingTimestampExcludedByRange(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "timestamp": "2024-03-01T00:00:00Z"},
		{"id": "2"},
		{"id": "3", "timestamp": "not a date"},
	}

	page := run(t, records, "startDate=2024-01-01")
	assert.Equal(t, 1, page.Total)

	page = run(t, records, "")
	assert.Equal(t, 3, page.Total)
}

func TestParseQuery_InvalidDates(t *testing.T) {
	for _, raw := range []string{"startDate=yesterday", "endDate=2024-13-45", "startDate=2024-01-01&endDate=soon"} {
		t.Run(raw, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)

			_, err = ParseQuery(values, testSpec)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		})
	}
}

func TestExecute_Sort(t *testing.T) {
	records := makeLogs(6)

	page := run(t, records, "sort=timestamp&order=desc")
	require.Len(t, page.Items, 6)
	assert.Equal(t, "log-06", page.Items[0].ID())
	assert.Equal(t, "log-01", page.Items[5].ID())

	// Stable: ties keep collection order
	page = run(t, records, "sort=retries")
	ids := []string{}
	for _, r := range page.Items {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"log-01", "log-03", "log-05", "log-02", "log-04", "log-06"}, ids)

	values, _ := url.ParseQuery("sort=message")
	_, err := ParseQuery(values, testSpec)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	values, _ = url.ParseQuery("sort=level&order=sideways")
	_, err = ParseQuery(values, testSpec)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestExecute_IdempotentAndPure(t *testing.T) {
	records := makeLogs(25)
	before := make([]string, len(records))
	for i, r := range records {
		before[i] = r.ID()
	}

	first := run(t, records, "level=warn&search=delivered&sort=timestamp&order=desc&limit=3&page=2")
	second := run(t, records, "level=warn&search=delivered&sort=timestamp&order=desc&limit=3&page=2")

	assert.Equal(t, first, second)
	for i, r := range records {
		assert.Equal(t, before[i], r.ID(), "input order changed at %d", i)
	}
}

func TestExecute_DottedFieldPaths(t *testing.T) {
	spec := resource.Spec{
		Name:           "logs",
		TimestampField: "meta.at",
		DefaultLimit:   10,
		MaxLimit:       10,
		Filters:        []string{"meta.provider"},
		Search:         []string{"meta.note"},
	}
	records := []domain.Record{
		{"id": "1", "meta": map[string]interface{}{"provider": "twilio", "note": "Retry scheduled", "at": "2024-02-01T00:00:00Z"}},
		{"id": "2", "meta": map[string]interface{}{"provider": "vonage", "note": "ok", "at": "2024-02-05T00:00:00Z"}},
	}

	q := domain.DefaultQuery()
	q.Filters["meta.provider"] = "twilio"
	page, err := Execute(records, spec, q)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].ID())

	q = domain.DefaultQuery()
	q.Search = "retry"
	start := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	q.StartDate = &start
	page, err = Execute(records, spec, q)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}
