// Package extension implements the plug-in framework: extensions publish
// tunable options and optionally data sources / RPC routes, and a
// Manager routes set/get/call through an ordered chain of them.
package extension

import "errors"

// Option describes one tunable key an Extension exposes.
type Option struct {
	Key        string
	Value      string // current value, empty string means unset/cleared
	Aliases    []string
	Help       string
	IsReadOnly bool
}

// Keys returns Key plus every alias — the full set of names this option
// answers to.
func (o Option) Keys() []string {
	return append([]string{o.Key}, o.Aliases...)
}

// ErrUnknownKey is the sentinel an Extension's Set/Get must return (or
// wrap) when asked about a key it doesn't own, so the Manager knows to
// keep iterating rather than abort.
var ErrUnknownKey = errors.New("extension: unknown option key")

// ErrReadOnly is returned by Set when the key is known but read-only.
var ErrReadOnly = errors.New("extension: option is read-only")

// Extension is the minimal contract every plug-in satisfies.
type Extension interface {
	// Name identifies the extension for logging and registration order
	// diagnostics.
	Name() string
	// Options lists every option this extension owns (primary + aliases
	// already expanded into one Option per primary key).
	Options() []Option
	// Set assigns value to key. Returns ErrUnknownKey if key isn't one
	// of this extension's option keys/aliases.
	Set(key, value string) error
	// Get returns the current text value of key. Returns ErrUnknownKey
	// if key isn't one of this extension's option keys/aliases.
	Get(key string) (string, error)
}

// Datasource is implemented by extensions that also publish query-engine
// table/namespace providers.
type Datasource interface {
	// Tables returns the (catalog, namespace, table name, provider)
	// tuples this extension contributes to the query engine.
	Tables() []TableRegistration
}

// TableRegistration names where a provider should be mounted in the
// query engine's catalog.
type TableRegistration struct {
	Catalog   string
	Namespace string
	Table     string
	Provider  any // query.TableProvider; typed `any` here to avoid an import cycle with internal/query
}

// RPCHandler is implemented by extensions that also answer arbitrary
// HTTP paths not covered by the core server routes.
type RPCHandler interface {
	// Routes returns the literal path strings this extension answers.
	Routes() []string
	// Call handles one request; params are the URL query parameters.
	Call(path string, params map[string]string, body []byte) ([]byte, error)
}
