package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/extension"
)

// Engine evaluates SQL-subset statements against a Catalog of
// TableProviders, forwarding SET statements to an extension.Manager.
type Engine struct {
	Catalog   *Catalog
	Options   *extension.Manager
	TimeoutMs int // default per-query timeout; overridable via SET engine.timeout_ms
}

// NewEngine returns an Engine backed by catalog and options. Pass nil
// options to run without a SET sink (each SET then fails with an
// ExecutionError wrapping extension.ErrUnknownKey, which Query logs and
// skips).
func NewEngine(catalog *Catalog, options *extension.Manager) *Engine {
	return &Engine{Catalog: catalog, Options: options, TimeoutMs: 30_000}
}

// Query parses and evaluates sql, which may contain multiple
// ';'-separated statements. SELECT/SHOW TABLES return a DataFrame; a
// trailing run of SET statements executes in order and returns the
// last SELECT/SHOW TABLES result, or an empty frame if sql was SET-only.
func (e *Engine) Query(ctx context.Context, sql string) (*columnar.DataFrame, error) {
	stmts, err := ParseStatements(sql)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	timeout := time.Duration(e.TimeoutMs) * time.Millisecond
	if e.Options != nil {
		if v, err := e.Options.Get("engine.timeout_ms"); err == nil {
			if ms, perr := parseIntOr(v, e.TimeoutMs); perr == nil {
				timeout = time.Duration(ms) * time.Millisecond
			}
		}
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var last *columnar.DataFrame
	for _, stmt := range stmts {
		df, err := e.execOne(qctx, stmt)
		if err != nil {
			if qctx.Err() != nil {
				return nil, &TimeoutError{Query: sql}
			}
			if stmt.Set != nil {
				// A failed SET must not abort the rest of a compound
				// statement: log it and keep evaluating subsequent
				// statements against the catalog as it stood before.
				slog.Warn("query: SET failed, continuing", "key", stmt.Set.Key, "error", err)
				continue
			}
			return nil, err
		}
		if df != nil {
			last = df
		}
	}
	if last == nil {
		last = columnar.Empty()
	}
	return last, nil
}

func parseIntOr(s string, fallback int) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return fallback, err
	}
	return n, nil
}

func (e *Engine) execOne(ctx context.Context, stmt *Statement) (*columnar.DataFrame, error) {
	switch {
	case stmt.Set != nil:
		if e.Options == nil {
			return nil, &ExecutionError{Stage: "eval", Err: extension.ErrUnknownKey}
		}
		if err := e.Options.Set(stmt.Set.Key, stmt.Set.Value); err != nil {
			return nil, &ExecutionError{Stage: "eval", Err: err}
		}
		return nil, nil
	case stmt.ShowTables:
		return e.showTables(), nil
	case stmt.Select != nil:
		return e.execSelect(ctx, stmt.Select)
	default:
		return nil, &ExecutionError{Stage: "eval", Err: fmt.Errorf("empty statement")}
	}
}

func (e *Engine) showTables() *columnar.DataFrame {
	names := e.Catalog.ShowTables()
	sort.Strings(names)
	col := columnar.NewSeqOf(columnar.TagText)
	for _, n := range names {
		_ = col.Append(columnar.Text(n))
	}
	df, _ := columnar.NewDataFrame([]string{"table"}, []*columnar.Seq{col})
	return df
}

// row is a name -> value mapping used during evaluation, after a scan
// and before materializing back into a DataFrame.
type row map[string]columnar.Ele

func (e *Engine) execSelect(ctx context.Context, sel *SelectStmt) (*columnar.DataFrame, error) {
	base, err := e.resolveAndScan(ctx, sel.From, sel.Where)
	if err != nil {
		return nil, err
	}
	rows := frameToRows(base, sel.From.Alias)

	for _, j := range sel.Joins {
		jf, err := e.resolveAndScan(ctx, j.Table, nil)
		if err != nil {
			return nil, err
		}
		jrows := frameToRows(jf, j.Table.Alias)
		rows, err = hashJoin(rows, jrows, j.Left, j.Right)
		if err != nil {
			return nil, &ExecutionError{Stage: "join", Err: err}
		}
	}

	if sel.Where != nil {
		filtered := rows[:0]
		for _, r := range rows {
			ok, err := evalBool(sel.Where, r)
			if err != nil {
				return nil, &ExecutionError{Stage: "eval", Err: err}
			}
			if ok {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if len(sel.GroupBy) > 0 || hasAggregate(sel.Columns) {
		rows, err = groupRows(rows, sel.GroupBy, sel.Columns)
		if err != nil {
			return nil, &ExecutionError{Stage: "eval", Err: err}
		}
	}

	if len(sel.OrderBy) > 0 {
		sortRows(rows, sel.OrderBy)
	}

	if sel.Limit != nil && len(rows) > *sel.Limit {
		rows = rows[:*sel.Limit]
	}

	return rowsToFrame(rows, sel.Columns)
}

func (e *Engine) resolveAndScan(ctx context.Context, ref TableRef, where Expr) (*columnar.DataFrame, error) {
	provider, err := e.Catalog.Resolve(ref.Namespace, ref.Table)
	if err != nil {
		return nil, &ExecutionError{Stage: "resolve", Err: err}
	}
	filters := pushdownFilters(where)
	df, err := provider.Scan(ctx, filters)
	if err != nil {
		return nil, &ExecutionError{Stage: "scan", Err: err}
	}
	return df, nil
}

// pushdownFilters extracts top-level AND'd equality/comparisons as
// hints; providers may ignore them freely since the engine re-applies
// the full predicate.
func pushdownFilters(e Expr) []Filter {
	var out []Filter
	var walk func(Expr)
	walk = func(ex Expr) {
		switch v := ex.(type) {
		case *AndExpr:
			walk(v.Left)
			walk(v.Right)
		case *CompareExpr:
			out = append(out, Filter{Column: v.Column, Op: v.Op, Value: v.Value})
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

func frameToRows(df *columnar.DataFrame, alias string) []row {
	rows := make([]row, df.Size())
	for i := 0; i < df.Size(); i++ {
		r := make(row, df.Width())
		vals := df.Row(i)
		for ci, name := range df.Names {
			r[name] = vals[ci]
			if alias != "" {
				r[alias+"."+name] = vals[ci]
			}
		}
		rows[i] = r
	}
	return rows
}

func hashJoin(left, right []row, leftKey, rightKey string) ([]row, error) {
	index := make(map[string][]row, len(right))
	for _, r := range right {
		v, ok := r[rightKey]
		if !ok {
			return nil, &UnknownColumnError{Column: rightKey}
		}
		index[v.String()] = append(index[v.String()], r)
	}
	var out []row
	for _, l := range left {
		lv, ok := l[leftKey]
		if !ok {
			return nil, &UnknownColumnError{Column: leftKey}
		}
		for _, r := range index[lv.String()] {
			merged := make(row, len(l)+len(r))
			for k, v := range l {
				merged[k] = v
			}
			for k, v := range r {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out, nil
}

func evalBool(e Expr, r row) (bool, error) {
	switch v := e.(type) {
	case *AndExpr:
		l, err := evalBool(v.Left, r)
		if err != nil || !l {
			return false, err
		}
		return evalBool(v.Right, r)
	case *OrExpr:
		l, err := evalBool(v.Left, r)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return evalBool(v.Right, r)
	case *NotExpr:
		inner, err := evalBool(v.Operand, r)
		return !inner, err
	case *CompareExpr:
		val, ok := r[v.Column]
		if !ok {
			return false, &UnknownColumnError{Column: v.Column}
		}
		return compareEleToLiteral(val, v.Op, v.Value)
	default:
		return false, fmt.Errorf("query: unsupported expression %T", e)
	}
}

func compareEleToLiteral(e columnar.Ele, op TokenType, lit Literal) (bool, error) {
	var cmp int
	switch lit.Kind {
	case LitNumber:
		var fv float64
		switch e.Tag() {
		case columnar.TagI32:
			fv = float64(e.AsI32())
		case columnar.TagI64:
			fv = float64(e.AsI64())
		case columnar.TagF32:
			fv = float64(e.AsF32())
		case columnar.TagF64:
			fv = e.AsF64()
		default:
			return false, fmt.Errorf("query: cannot compare %s column to number", e.Tag())
		}
		cmp = cmpFloat(fv, lit.Num)
	default:
		cmp = cmpString(e.String(), lit.Str)
	}
	switch op {
	case TokenEquals:
		return cmp == 0, nil
	case TokenNotEquals:
		return cmp != 0, nil
	case TokenLess:
		return cmp < 0, nil
	case TokenLessEq:
		return cmp <= 0, nil
	case TokenGreater:
		return cmp > 0, nil
	case TokenGreaterEq:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("query: unsupported operator %v", op)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func hasAggregate(cols []SelectExpr) bool {
	for _, c := range cols {
		if c.Aggregate != "" {
			return true
		}
	}
	return false
}

func groupKey(r row, groupBy []string) string {
	key := ""
	for _, g := range groupBy {
		key += g + "=" + r[g].String() + "\x1f"
	}
	return key
}

// groupRows collapses rows into one row per distinct GROUP BY key
// (or a single row if GroupBy is empty but an aggregate is present),
// computing every aggregate SelectExpr over each bucket.
func groupRows(rows []row, groupBy []string, cols []SelectExpr) ([]row, error) {
	buckets := make(map[string][]row)
	var order []string
	for _, r := range rows {
		k := groupKey(r, groupBy)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	if len(rows) == 0 && len(groupBy) == 0 {
		buckets[""] = nil
		order = []string{""}
	}

	var out []row
	for _, k := range order {
		bucket := buckets[k]
		result := make(row)
		if len(bucket) > 0 {
			for _, g := range groupBy {
				result[g] = bucket[0][g]
			}
		}
		for _, c := range cols {
			if c.Aggregate == "" {
				continue
			}
			val, err := aggregate(c.Aggregate, c.Arg, bucket)
			if err != nil {
				return nil, err
			}
			result[c.Alias] = val
		}
		out = append(out, result)
	}
	return out, nil
}

func aggregate(fn, arg string, bucket []row) (columnar.Ele, error) {
	switch fn {
	case "COUNT":
		return columnar.I64(int64(len(bucket))), nil
	case "SUM", "AVG", "MIN", "MAX":
		var sum float64
		var min, max float64
		have := false
		for _, r := range bucket {
			e, ok := r[arg]
			if !ok || e.IsNil() {
				continue
			}
			v, err := eleToFloat(e)
			if err != nil {
				return columnar.Ele{}, err
			}
			if !have {
				min, max = v, v
				have = true
			}
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		switch fn {
		case "SUM":
			return columnar.F64(sum), nil
		case "AVG":
			if !have {
				return columnar.F64(0), nil
			}
			return columnar.F64(sum / float64(len(bucket))), nil
		case "MIN":
			return columnar.F64(min), nil
		default:
			return columnar.F64(max), nil
		}
	default:
		return columnar.Ele{}, fmt.Errorf("query: unknown aggregate %s", fn)
	}
}

func eleToFloat(e columnar.Ele) (float64, error) {
	switch e.Tag() {
	case columnar.TagI32:
		return float64(e.AsI32()), nil
	case columnar.TagI64:
		return float64(e.AsI64()), nil
	case columnar.TagF32:
		return float64(e.AsF32()), nil
	case columnar.TagF64:
		return e.AsF64(), nil
	default:
		return 0, fmt.Errorf("query: cannot aggregate non-numeric column (%s)", e.Tag())
	}
}

func sortRows(rows []row, terms []OrderTerm) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			a, b := rows[i][t.Column], rows[j][t.Column]
			c := compareEle(a, b)
			if c == 0 {
				continue
			}
			if t.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareEle(a, b columnar.Ele) int {
	if af, err := eleToFloat(a); err == nil {
		if bf, err := eleToFloat(b); err == nil {
			return cmpFloat(af, bf)
		}
	}
	return cmpString(a.String(), b.String())
}

func rowsToFrame(rows []row, cols []SelectExpr) (*columnar.DataFrame, error) {
	names, seqs, err := selectColumns(rows, cols)
	if err != nil {
		return nil, err
	}
	return columnar.NewDataFrame(names, seqs)
}

func selectColumns(rows []row, cols []SelectExpr) ([]string, []*columnar.Seq, error) {
	if len(cols) == 1 && cols[0].Star {
		return starColumns(rows)
	}
	names := make([]string, 0, len(cols))
	seqs := make([]*columnar.Seq, 0, len(cols))
	for _, c := range cols {
		if c.Star {
			return nil, nil, fmt.Errorf("query: '*' cannot be mixed with other select items")
		}
		key := c.Column
		if c.Aggregate != "" {
			key = c.Alias
		}
		seq := columnar.NewSeq()
		for _, r := range rows {
			if err := seq.Append(r[key]); err != nil {
				return nil, nil, err
			}
		}
		names = append(names, c.Alias)
		seqs = append(seqs, seq)
	}
	return names, seqs, nil
}

func starColumns(rows []row) ([]string, []*columnar.Seq, error) {
	if len(rows) == 0 {
		return nil, nil, nil
	}
	var names []string
	for k := range rows[0] {
		if strings.Contains(k, ".") {
			continue // alias-qualified duplicate, only the bare name is part of '*'
		}
		names = append(names, k)
	}
	sort.Strings(names)
	seqs := make([]*columnar.Seq, len(names))
	for i, n := range names {
		seq := columnar.NewSeq()
		for _, r := range rows {
			if err := seq.Append(r[n]); err != nil {
				return nil, nil, err
			}
		}
		seqs[i] = seq
	}
	return names, seqs, nil
}
