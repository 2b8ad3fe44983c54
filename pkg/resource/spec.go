// Package resource declares the mock collections served by the admin API and
// the query contract each of them exposes.
package resource

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// Spec is the declarative description of one resource. The list query engine
// is driven entirely by it: no resource carries its own filter code.
type Spec struct {
	Name           string   `koanf:"name" validate:"required,alphanum"`
	TimestampField string   `koanf:"timestamp_field" validate:"required"`
	DefaultLimit   int      `koanf:"default_limit" validate:"min=1"`
	MaxLimit       int      `koanf:"max_limit" validate:"min=1,gtefield=DefaultLimit"`
	Filters        []string `koanf:"filters"`
	Search         []string `koanf:"search"`
	Sortable       []string `koanf:"sortable"`
	ReadOnly       bool     `koanf:"read_only"`
	Seed           int      `koanf:"seed" validate:"min=0"`

	// NewBody returns the validated shape of a writable record
	NewBody func() interface{} `koanf:"-"`
}

// Override holds the per-resource settings that configuration may change
type Override struct {
	DefaultLimit *int `koanf:"default_limit"`
	MaxLimit     *int `koanf:"max_limit"`
	Seed         *int `koanf:"seed"`
}

// IsFilter reports whether field is an exact-match filter for this resource
func (s Spec) IsFilter(field string) bool {
	return contains(s.Filters, field)
}

// IsSortable reports whether the list may be sorted by field
func (s Spec) IsSortable(field string) bool {
	return field == s.TimestampField || contains(s.Sortable, field)
}

// Apply returns a copy of the spec with the override applied
func (s Spec) Apply(o Override) Spec {
	if o.DefaultLimit != nil {
		s.DefaultLimit = *o.DefaultLimit
	}
	if o.MaxLimit != nil {
		s.MaxLimit = *o.MaxLimit
	}
	if o.Seed != nil {
		s.Seed = *o.Seed
	}
	return s
}

// Registry indexes specs by resource name
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from specs, applying overrides by name
func NewRegistry(specs []Spec, overrides map[string]Override) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if o, ok := overrides[s.Name]; ok {
			s = s.Apply(o)
		}
		if err := validate.Struct(s); err != nil {
			return nil, fmt.Errorf("resource %q: %w", s.Name, formatValidationError(err))
		}
		if _, dup := r.specs[s.Name]; dup {
			return nil, fmt.Errorf("resource %q declared twice", s.Name)
		}
		r.specs[s.Name] = s
	}
	for name := range overrides {
		if _, ok := r.specs[name]; !ok {
			return nil, fmt.Errorf("override for unknown resource %q", name)
		}
	}
	return r, nil
}

// Lookup returns the spec for name
func (r *Registry) Lookup(name string) (Spec, error) {
	s, ok := r.specs[name]
	if !ok {
		return Spec{}, domain.NewError(domain.KindNotFound, "unknown resource %s", name)
	}
	return s, nil
}

// All returns every spec sorted by name
func (r *Registry) All() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
