package listquery

import (
	"sort"
	"strings"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// sortRecords orders records by field with a stable sort so ties keep
// collection order. Records missing the field always sort last.
func sortRecords(records []domain.Record, field string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, okA := records[i].Lookup(field)
		b, okB := records[j].Lookup(field)
		switch {
		case !okA || a == nil:
			return false
		case !okB || b == nil:
			return true
		}
		c := compareValues(records[i], records[j], field, a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(ra, rb domain.Record, field string, a, b interface{}) int {
	if fa, ok := ToFloat64(a); ok {
		if fb, ok := ToFloat64(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := ra.Time(field); ok {
		if tb, ok := rb.Time(field); ok {
			return ta.Compare(tb)
		}
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(strings.ToLower(sa), strings.ToLower(sb))
	}
	return 0
}
