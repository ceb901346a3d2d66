package macro

import (
	"slices"
	"sync/atomic"
)

// Macro is a named, compiled instruction sequence. A compiled macro's
// last instruction is always OpEnd.
type Macro struct {
	Name         string
	Instructions []Instruction
}

// Registry maps macro names to compiled macros. A Registry is never
// modified after it is built, so it may be shared freely between
// goroutines.
type Registry struct {
	macros map[string]*Macro
}

// NewRegistry builds a registry from already compiled macros. A later
// macro replaces an earlier one of the same name.
func NewRegistry(macros ...*Macro) *Registry {
	m := make(map[string]*Macro, len(macros))
	for _, mac := range macros {
		if mac != nil {
			m[mac.Name] = mac
		}
	}
	return newRegistry(m)
}

func newRegistry(macros map[string]*Macro) *Registry {
	return &Registry{macros: macros}
}

// Lookup returns the macro with the exact given name.
func (r *Registry) Lookup(name string) (*Macro, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.macros[name]
	return m, ok
}

// Names returns every macro name, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.macros))
	for name := range r.macros {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of macros.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.macros)
}

// Store holds the current registry. Readers always see a complete
// registry; a reload replaces it in one step.
type Store struct {
	current atomic.Pointer[Registry]
}

// NewStore creates a store holding reg. A nil reg is an empty registry.
func NewStore(reg *Registry) *Store {
	s := &Store{}
	s.Swap(reg)
	return s
}

// Load returns the current registry. It never returns nil.
func (s *Store) Load() *Registry {
	if reg := s.current.Load(); reg != nil {
		return reg
	}
	return NewRegistry()
}

// Swap installs reg and returns the registry it replaced.
func (s *Store) Swap(reg *Registry) *Registry {
	if reg == nil {
		reg = NewRegistry()
	}
	return s.current.Swap(reg)
}
