package domain

import (
	"strings"
	"time"
)

// IDField is the field every record is keyed by
const IDField = "id"

// Record represents a single entity in a mock collection
type Record map[string]interface{}

// ID returns the record identifier, or "" when absent
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Lookup resolves a possibly dotted field path such as "metadata.channel"
func (r Record) Lookup(path string) (interface{}, bool) {
	if v, ok := r[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var current interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		case Record:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// Time parses the value stored at field as a timestamp
func (r Record) Time(field string) (time.Time, bool) {
	v, ok := r.Lookup(field)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := ParseTimestamp(t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// Clone returns a deep copy of the record so callers can never mutate the
// stored version through nested maps or slices
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return val.Clone()
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// Merge applies patch on top of the record, never touching the id field.
// Nested objects are replaced, not deep-merged.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		if k == IDField {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp accepts ISO8601 date-times and calendar dates
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// IsDateOnly reports whether s is a bare calendar date (no time component)
func IsDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}
