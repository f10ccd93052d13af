package query

import (
	"context"

	"github.com/probing-go/probing/internal/columnar"
)

// Filter is a pushdown hint derived from a WHERE clause's top-level
// conjuncts; a TableProvider may use it to avoid materializing rows the
// engine would filter out anyway. Providers that ignore it are still
// correct — the engine re-applies Where over the returned frame.
type Filter struct {
	Column string
	Op     TokenType
	Value  Literal
}

// TableProvider is implemented by anything the query engine can SELECT
// FROM: process.envs, a cluster-node table, a user extension's
// Datasource table, etc. Schema is fixed for the lifetime of the
// provider; Scan materializes the full (optionally filtered) table into
// one DataFrame rather than a streaming batch interface, per the engine's
// single-shot query model.
type TableProvider interface {
	// Schema returns the column names this table exposes, in order.
	Schema() []string
	// Scan returns the table's rows as a DataFrame. filters are pushdown
	// hints only; the engine always re-evaluates the full WHERE clause.
	Scan(ctx context.Context, filters []Filter) (*columnar.DataFrame, error)
}

// NamespaceProvider groups related tables under one namespace (e.g.
// "process", "cluster") and can enumerate them for SHOW TABLES.
type NamespaceProvider interface {
	Name() string
	Tables() map[string]TableProvider
}

// staticTable is a TableProvider wrapping an already-materialized
// DataFrame, used for in-memory/test tables and for namespaces that
// compute their contents eagerly.
type staticTable struct {
	schema []string
	frame  *columnar.DataFrame
}

// NewStaticTable returns a TableProvider that always scans frame
// verbatim, ignoring filters.
func NewStaticTable(frame *columnar.DataFrame) TableProvider {
	return &staticTable{schema: frame.Names, frame: frame}
}

func (t *staticTable) Schema() []string { return t.schema }

func (t *staticTable) Scan(_ context.Context, _ []Filter) (*columnar.DataFrame, error) {
	return t.frame, nil
}

// FuncTable adapts a plain function into a TableProvider, for tables
// whose contents must be recomputed on every query (process.envs,
// cluster.nodes, /proc-backed tables).
type FuncTable struct {
	SchemaNames []string
	ScanFunc    func(ctx context.Context, filters []Filter) (*columnar.DataFrame, error)
}

func (t *FuncTable) Schema() []string { return t.SchemaNames }

func (t *FuncTable) Scan(ctx context.Context, filters []Filter) (*columnar.DataFrame, error) {
	return t.ScanFunc(ctx, filters)
}
