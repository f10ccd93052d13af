package query

import "sync"

// DefaultCatalog is the catalog name the agent registers its tables
// under. A FROM/JOIN reference's catalog part is not checked against it,
// and a reference that omits the namespace is resolved by searching
// every namespace for a unique table of that name, e.g. "envs" finds
// "process.envs" if no other namespace declares "envs".
const (
	DefaultCatalog = "probing"
)

// Catalog is a two-level registry of namespaces and their tables.
type Catalog struct {
	mu         sync.RWMutex
	name       string
	namespaces map[string]map[string]TableProvider
}

// NewCatalog returns an empty catalog named name.
func NewCatalog(name string) *Catalog {
	return &Catalog{name: name, namespaces: make(map[string]map[string]TableProvider)}
}

func (c *Catalog) Name() string { return c.name }

// RegisterTable mounts provider at namespace.table, creating the
// namespace if it doesn't exist yet.
func (c *Catalog) RegisterTable(namespace, table string, provider TableProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.namespaces[namespace]
	if !ok {
		ns = make(map[string]TableProvider)
		c.namespaces[namespace] = ns
	}
	ns[table] = provider
}

// RegisterNamespace mounts every table a NamespaceProvider exposes.
func (c *Catalog) RegisterNamespace(np NamespaceProvider) {
	for table, provider := range np.Tables() {
		c.RegisterTable(np.Name(), table, provider)
	}
}

// Resolve looks up a table by (possibly empty) namespace and table name.
// An empty namespace searches every registered namespace for a unique
// match.
func (c *Catalog) Resolve(namespace, table string) (TableProvider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if namespace != "" {
		ns, ok := c.namespaces[namespace]
		if !ok {
			return nil, &UnknownTableError{Namespace: namespace, Table: table}
		}
		p, ok := ns[table]
		if !ok {
			return nil, &UnknownTableError{Namespace: namespace, Table: table}
		}
		return p, nil
	}

	var found TableProvider
	for _, ns := range c.namespaces {
		if p, ok := ns[table]; ok {
			if found != nil {
				return nil, &UnknownTableError{Table: table} // ambiguous
			}
			found = p
		}
	}
	if found == nil {
		return nil, &UnknownTableError{Table: table}
	}
	return found, nil
}

// ShowTables lists every "namespace.table" name currently registered.
func (c *Catalog) ShowTables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for ns, tables := range c.namespaces {
		for t := range tables {
			out = append(out, ns+"."+t)
		}
	}
	return out
}
