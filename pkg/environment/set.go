package environment

import "sort"

// Set holds environments keyed by ID. The zero value is an empty set ready
// to use.
type Set struct {
	items map[string]*Environment
}

// NewSet creates a Set holding envs.
func NewSet(envs ...*Environment) *Set {
	s := &Set{items: make(map[string]*Environment, len(envs))}
	for _, e := range envs {
		s.Add(e)
	}
	return s
}

// Add inserts e, replacing an environment with the same ID. It reports
// whether e was new.
func (s *Set) Add(e *Environment) bool {
	if e == nil {
		return false
	}
	if s.items == nil {
		s.items = make(map[string]*Environment)
	}
	_, exists := s.items[e.Key()]
	s.items[e.Key()] = e
	return !exists
}

// Get returns the environment with the given ID.
func (s *Set) Get(id string) (*Environment, bool) {
	e, ok := s.items[id]
	return e, ok
}

// Len returns the number of environments.
func (s *Set) Len() int {
	return len(s.items)
}

// Sorted returns the environments ordered by executable path.
func (s *Set) Sorted() []*Environment {
	out := make([]*Environment, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Executable != out[j].Executable {
			return out[i].Executable < out[j].Executable
		}
		return out[i].ID < out[j].ID
	})
	return out
}
