// Package indexing builds inverted indexes over a slice of records so that
// grouped counts and value lookups do not rescan the slice per field.
package indexing

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// MissingValue is the key under which records lacking a field are indexed
const MissingValue = "unknown"

// IndexEngine holds one index per field over the same record slice
type IndexEngine struct {
	indexes map[string]*Index // field name -> index
	size    int
}

// NewIndexEngine indexes records by every given field in a single pass
func NewIndexEngine(records []domain.Record, fields ...string) *IndexEngine {
	ie := &IndexEngine{
		indexes: make(map[string]*Index, len(fields)),
		size:    len(records),
	}
	for _, field := range fields {
		ie.indexes[field] = NewIndex(field)
	}
	for pos, rec := range records {
		for _, idx := range ie.indexes {
			idx.add(pos, rec)
		}
	}
	return ie
}

// Index maps a field's value to the positions of the records holding it.
type Index struct {
	Field    string
	Inverted map[string][]int
}

// NewIndex creates an empty index on a specific field.
func NewIndex(field string) *Index {
	return &Index{
		Field:    field,
		Inverted: make(map[string][]int),
	}
}

func (idx *Index) add(pos int, rec domain.Record) {
	key := Key(rec[idx.Field])
	idx.Inverted[key] = append(idx.Inverted[key], pos)
}

// Query returns the positions of records whose field equals value, in
// ascending order.
func (idx *Index) Query(value string) []int {
	return idx.Inverted[value]
}

// Counts returns the number of records per distinct value
func (idx *Index) Counts() map[string]int {
	out := make(map[string]int, len(idx.Inverted))
	for key, positions := range idx.Inverted {
		out[key] = len(positions)
	}
	return out
}

// Values returns the distinct values seen, sorted
func (idx *Index) Values() []string {
	out := make([]string, 0, len(idx.Inverted))
	for key := range idx.Inverted {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// GetIndex returns the index for field
func (ie *IndexEngine) GetIndex(field string) (*Index, error) {
	idx, ok := ie.indexes[field]
	if !ok {
		return nil, fmt.Errorf("index on field %s does not exist", field)
	}
	return idx, nil
}

// Counts is GetIndex(field).Counts(), empty for unindexed fields
func (ie *IndexEngine) Counts(field string) map[string]int {
	idx, err := ie.GetIndex(field)
	if err != nil {
		return map[string]int{}
	}
	return idx.Counts()
}

// Len is the number of records indexed
func (ie *IndexEngine) Len() int {
	return ie.size
}

// Key normalises a field value into an index key. Missing and empty values
// share MissingValue.
func Key(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return MissingValue
	case string:
		if val == "" {
			return MissingValue
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
