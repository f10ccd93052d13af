package query

// Statement is the top-level parsed unit: exactly one of the following
// is non-nil.
type Statement struct {
	Select     *SelectStmt
	ShowTables bool
	Set        *SetStmt
}

// SelectExpr is one item in a SELECT list: either a bare column
// reference or an aggregate function call, optionally aliased.
type SelectExpr struct {
	Star      bool
	Column    string
	Aggregate string // "", or COUNT/SUM/AVG/MIN/MAX
	Arg       string // aggregate argument column, "*" for COUNT(*)
	Alias     string
}

// TableRef names a FROM/JOIN source: catalog.namespace.table, any
// prefix of which may be omitted (the catalog part is not checked; an
// omitted namespace is resolved by Catalog.Resolve).
type TableRef struct {
	Catalog   string
	Namespace string
	Table     string
	Alias     string
}

// JoinClause is one JOIN ... ON ... in a SELECT.
type JoinClause struct {
	Table TableRef
	Left  string // left side column of the ON equality
	Right string // right side column of the ON equality
}

// OrderTerm is one ORDER BY column plus direction.
type OrderTerm struct {
	Column string
	Desc   bool
}

// SelectStmt is a parsed SELECT.
type SelectStmt struct {
	Columns []SelectExpr
	From    TableRef
	Joins   []JoinClause
	Where   Expr
	GroupBy []string
	OrderBy []OrderTerm
	Limit   *int
}

// SetStmt is a parsed "SET key = value".
type SetStmt struct {
	Key   string
	Value string
}

// Expr is a boolean/comparison expression node in a WHERE clause.
type Expr interface{ expr() }

type CompareExpr struct {
	Column string
	Op     TokenType // one of Equals/NotEquals/Less/LessEq/Greater/GreaterEq
	Value  Literal
}

type AndExpr struct{ Left, Right Expr }
type OrExpr struct{ Left, Right Expr }
type NotExpr struct{ Operand Expr }

func (*CompareExpr) expr() {}
func (*AndExpr) expr()     {}
func (*OrExpr) expr()      {}
func (*NotExpr) expr()     {}

// LiteralKind discriminates a WHERE-clause literal's type.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
)

// Literal is a parsed constant in a comparison.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
}
