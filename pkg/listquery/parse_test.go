package listquery

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

func parse(t *testing.T, raw string) (domain.Query, error) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return ParseQuery(values, testSpec)
}

func TestParseQuery_Paging(t *testing.T) {
	tests := []struct {
		raw       string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=&limit=", 1, 10},
		{"page=0&limit=-5", 1, 1},
		{"page=abc&limit=xyz", 1, 1},
		{"limit=100000", 1, 100},
		{"page=%202%20", 2, 10},
		{"page=9223372036854775807", math.MaxInt, 10},
		{"page=99999999999999999999", math.MaxInt, 10},
		{"page=-99999999999999999999", 1, 10},
		{"limit=99999999999999999999", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q, err := parse(t, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantLimit, q.Limit)
		})
	}
}

func TestParseQuery_FiltersOnlyDeclaredFields(t *testing.T) {
	q, err := parse(t, "level=error&channel=&password=secret&search=%20hello%20&userId=user-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"level": "error", "userId": "user-1"}, q.Filters)
	assert.Equal(t, "hello", q.Search)
}

func TestParseQuery_Sort(t *testing.T) {
	q, err := parse(t, "sort=timestamp&order=DESC")
	require.NoError(t, err)
	assert.Equal(t, "timestamp", q.Sort)
	assert.Equal(t, domain.SortDesc, q.Order)

	_, err = parse(t, "sort=recipient")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = parse(t, "sort=level&order=sideways")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange(url.Values{
		"startDate": {"2024-03-01"},
		"endDate":   {"2024-03-05"},
	})
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *start)
	// A date-only end bound covers the whole day
	assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), *end)

	_, end, err = ParseDateRange(url.Values{"endDate": {"2024-03-05T10:00:00Z"}})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), *end)

	start, end, err = ParseDateRange(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	_, _, err = ParseDateRange(url.Values{"startDate": {"not-a-date"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Contains(t, err.Error(), "startDate")
}
