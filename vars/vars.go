// Package vars implements the macro store: an ordered list of
// name/value pairs where redefinition keeps the original position.
package vars

import (
	"strings"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/system"
)

// Entry is a single macro definition.
type Entry struct {
	Name  string
	Value string
}

// Store holds macros in definition order.
type Store struct {
	entries []*Entry
	index   map[string]*Entry // name → entry
	env     system.Env
}

// New creates an empty store. Definitions of names that already exist
// in env (upper-cased) are mirrored into it so child processes see the
// makefile's value. env may be nil.
func New(env system.Env) *Store {
	return &Store{index: make(map[string]*Entry), env: env}
}

// Set adds or updates a macro. An existing macro keeps its position.
func (s *Store) Set(name, value string) {
	if s.index == nil {
		s.index = make(map[string]*Entry)
	}
	log.Debugf("vars: [%s] = [%s]", name, value)
	s.mirror(name, value)
	if existing, ok := s.index[name]; ok {
		existing.Value = value
		return
	}
	e := &Entry{Name: name, Value: value}
	s.entries = append(s.entries, e)
	s.index[name] = e
}

// SetDefault adds a macro only if it is not already defined.
func (s *Store) SetDefault(name, value string) {
	if !s.Has(name) {
		s.Set(name, value)
	}
}

// Lookup returns the value of name and whether it is defined.
func (s *Store) Lookup(name string) (string, bool) {
	if s == nil || s.index == nil {
		return "", false
	}
	e, ok := s.index[name]
	if !ok {
		return "", false
	}
	return e.Value, true
}

// Get returns the value of name, or "" when undefined.
func (s *Store) Get(name string) string {
	v, _ := s.Lookup(name)
	return v
}

// Has reports whether name is defined.
func (s *Store) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Delete removes name. Later definitions of it are appended at the end.
func (s *Store) Delete(name string) {
	if _, ok := s.index[name]; !ok {
		return
	}
	delete(s.index, name)
	for i, e := range s.entries {
		if e.Name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

// Len returns the number of macros.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the macros in definition order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

func (s *Store) mirror(name, value string) {
	if s.env == nil {
		return
	}
	key := strings.ToUpper(name)
	current, ok := s.env.Lookup(key)
	if !ok || current == value {
		return
	}
	if err := s.env.Set(key, value); err != nil {
		log.Warnf("cannot set environment variable %s: %v", key, err)
	}
}
