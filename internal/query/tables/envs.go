// Package tables implements the built-in process.* TableProviders: envs,
// threads, and kmsg, registered by internal/agent at startup so they are
// always queryable without an extension.
package tables

import (
	"context"
	"os"
	"strings"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/query"
)

// Namespace is the process.* table group.
type Namespace struct {
	pid int
}

// NewNamespace returns the process namespace for the current process.
func NewNamespace() *Namespace {
	return &Namespace{pid: os.Getpid()}
}

func (n *Namespace) Name() string { return "process" }

func (n *Namespace) Tables() map[string]query.TableProvider {
	return map[string]query.TableProvider{
		"envs":    &envsTable{},
		"threads": newThreadsTable(n.pid),
		"kmsg":    &kmsgTable{},
	}
}

// envsTable exposes os.Environ() as a name/value table, grounded on
// original_source's plugins/env.rs schema (name text, value text).
type envsTable struct{}

func (t *envsTable) Schema() []string { return []string{"name", "value"} }

func (t *envsTable) Scan(_ context.Context, _ []query.Filter) (*columnar.DataFrame, error) {
	names := columnar.NewSeqOf(columnar.TagText)
	values := columnar.NewSeqOf(columnar.TagText)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		name := parts[0]
		value := ""
		if len(parts) == 2 {
			value = parts[1]
		}
		_ = names.Append(columnar.Text(name))
		_ = values.Append(columnar.Text(value))
	}
	return columnar.NewDataFrame([]string{"name", "value"}, []*columnar.Seq{names, values})
}
