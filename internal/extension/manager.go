package extension

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedOption is returned when no registered extension claims a
// key.
type ErrUnsupportedOption struct{ Key string }

func (e *ErrUnsupportedOption) Error() string {
	return fmt.Sprintf("extension: unsupported option %q", e.Key)
}

// ErrNoRoute is returned by Call when no extension's RPCHandler matches
// the path.
type ErrNoRoute struct{ Path string }

func (e *ErrNoRoute) Error() string {
	return fmt.Sprintf("extension: no route for %q", e.Path)
}

// Manager holds an ordered chain of extensions and implements the
// set/get/call/options resolution rules of spec.md §4.D.
type Manager struct {
	mu         sync.RWMutex
	extensions []Extension
}

// NewManager returns an empty manager.
func NewManager() *Manager { return &Manager{} }

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default returns the process-wide extension manager singleton.
func Default() *Manager {
	defaultOnce.Do(func() { defaultMgr = NewManager() })
	return defaultMgr
}

// Register appends ext to the end of the chain (registration order
// determines priority for Set/Get/Call).
func (m *Manager) Register(ext Extension) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extensions = append(m.extensions, ext)
}

// Extensions returns a snapshot of the registered chain, in order.
func (m *Manager) Extensions() []Extension {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Extension, len(m.extensions))
	copy(out, m.extensions)
	return out
}

// Set iterates extensions in registration order; the first whose
// key-set contains key consumes the call. ErrUnknownKey causes
// iteration to continue; any other error aborts immediately.
func (m *Manager) Set(key, value string) error {
	for _, ext := range m.Extensions() {
		err := ext.Set(key, value)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnknownKey) {
			continue
		}
		return err
	}
	return &ErrUnsupportedOption{Key: key}
}

// Get mirrors Set's traversal for reads.
func (m *Manager) Get(key string) (string, error) {
	for _, ext := range m.Extensions() {
		val, err := ext.Get(key)
		if err == nil {
			return val, nil
		}
		if errors.Is(err, ErrUnknownKey) {
			continue
		}
		return "", err
	}
	return "", &ErrUnsupportedOption{Key: key}
}

// Options concatenates the per-extension option lists, in registration
// order.
func (m *Manager) Options() []Option {
	var out []Option
	for _, ext := range m.Extensions() {
		out = append(out, ext.Options()...)
	}
	return out
}

// Call dispatches path to the first extension whose RPCHandler route
// matches.
func (m *Manager) Call(path string, params map[string]string, body []byte) ([]byte, error) {
	for _, ext := range m.Extensions() {
		rh, ok := ext.(RPCHandler)
		if !ok {
			continue
		}
		for _, route := range rh.Routes() {
			if route == path {
				return rh.Call(path, params, body)
			}
		}
	}
	return nil, &ErrNoRoute{Path: path}
}

// Datasources returns every TableRegistration contributed by registered
// extensions, in registration order.
func (m *Manager) Datasources() []TableRegistration {
	var out []TableRegistration
	for _, ext := range m.Extensions() {
		ds, ok := ext.(Datasource)
		if !ok {
			continue
		}
		out = append(out, ds.Tables()...)
	}
	return out
}
