// Package registry holds the ordered set of registered tests and the
// machinery that turns command-line name patterns into a run selection.
package registry

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// Registry manages the registered tests. Registration order is
// significant and preserved; the registry is immutable once built.
type Registry struct {
	cases  []types.TestCase
	byName map[string]int
}

// New creates a registry from the registered cases. Every case needs a
// unique non-empty name and a non-nil entry.
func New(cases []types.TestCase) (*Registry, error) {
	r := &Registry{
		cases:  make([]types.TestCase, len(cases)),
		byName: make(map[string]int, len(cases)),
	}
	copy(r.cases, cases)

	for i, tc := range r.cases {
		if tc.Name == "" {
			return nil, fmt.Errorf("test at position %d has an empty name", i)
		}
		if tc.Entry == nil {
			return nil, fmt.Errorf("test %q has a nil function", tc.Name)
		}
		if _, ok := r.byName[tc.Name]; ok {
			return nil, fmt.Errorf("duplicate test name %q", tc.Name)
		}
		r.byName[tc.Name] = i
	}

	return r, nil
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.cases)
}

// Case returns the test registered at position i.
func (r *Registry) Case(i int) types.TestCase {
	return r.cases[i]
}

// IndexOf returns the position of the test with the given name.
func (r *Registry) IndexOf(name string) (int, bool) {
	i, ok := r.byName[name]
	return i, ok
}

// Names returns every registered test name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.cases))
	for i, tc := range r.cases {
		names[i] = tc.Name
	}
	return names
}
