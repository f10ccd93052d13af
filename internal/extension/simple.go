package extension

import (
	"fmt"
	"sync"
)

// SimpleExtension is a small helper base for extensions whose options
// are plain string key/value pairs with validation callbacks — the
// common case (taskstats.interval, engine.timeout_ms, cluster.backend).
// Extensions with richer behavior (datasources, RPC routes) embed this
// and add their own methods.
type SimpleExtension struct {
	mu      sync.RWMutex
	name    string
	opts    map[string]*Option
	aliases map[string]string // alias -> primary key
	values  map[string]string
	onSet   map[string]func(value string) error
}

// NewSimpleExtension returns an extension named name with no options
// registered yet; call Declare for each option.
func NewSimpleExtension(name string) *SimpleExtension {
	return &SimpleExtension{
		name:    name,
		opts:    make(map[string]*Option),
		aliases: make(map[string]string),
		values:  make(map[string]string),
		onSet:   make(map[string]func(string) error),
	}
}

func (s *SimpleExtension) Name() string { return s.name }

// Declare registers an option. onSet, if non-nil, validates and is
// called to apply a new value; returning an error other than
// ErrUnknownKey aborts the Set call per spec.md §4.D.
func (s *SimpleExtension) Declare(key, initial, help string, readOnly bool, aliases []string, onSet func(value string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts[key] = &Option{Key: key, Aliases: aliases, Help: help, IsReadOnly: readOnly}
	s.values[key] = initial
	for _, a := range aliases {
		s.aliases[a] = key
	}
	if onSet != nil {
		s.onSet[key] = onSet
	}
}

func (s *SimpleExtension) resolve(key string) (string, bool) {
	if _, ok := s.opts[key]; ok {
		return key, true
	}
	if primary, ok := s.aliases[key]; ok {
		return primary, true
	}
	return "", false
}

func (s *SimpleExtension) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Option, 0, len(s.opts))
	for key, o := range s.opts {
		cp := *o
		cp.Value = s.values[key]
		out = append(out, cp)
	}
	return out
}

func (s *SimpleExtension) Set(key, value string) error {
	s.mu.Lock()
	primary, ok := s.resolve(key)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownKey
	}
	opt := s.opts[primary]
	if opt.IsReadOnly {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrReadOnly, primary)
	}
	validate := s.onSet[primary]
	s.mu.Unlock()

	if validate != nil {
		if err := validate(value); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.values[primary] = value
	s.mu.Unlock()
	return nil
}

func (s *SimpleExtension) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	primary, ok := s.resolve(key)
	if !ok {
		return "", ErrUnknownKey
	}
	return s.values[primary], nil
}
