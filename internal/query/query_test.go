package query

import (
	"context"
	"os"
	"testing"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/extension"
	"github.com/stretchr/testify/require"
)

func newNodesTable() TableProvider {
	names := columnar.NewSeqOf(columnar.TagText)
	ranks := columnar.NewSeqOf(columnar.TagI32)
	for _, row := range []struct {
		name string
		rank int32
	}{
		{"node-a", 0},
		{"node-b", 1},
		{"node-c", 2},
	} {
		_ = names.Append(columnar.Text(row.name))
		_ = ranks.Append(columnar.I32(row.rank))
	}
	df, err := columnar.NewDataFrame([]string{"name", "rank"}, []*columnar.Seq{names, ranks})
	if err != nil {
		panic(err)
	}
	return NewStaticTable(df)
}

func newLoadTable() TableProvider {
	ranks := columnar.NewSeqOf(columnar.TagI32)
	load := columnar.NewSeqOf(columnar.TagF64)
	for _, row := range []struct {
		rank int32
		load float64
	}{
		{0, 0.4}, {1, 0.9}, {2, 0.2},
	} {
		_ = ranks.Append(columnar.I32(row.rank))
		_ = load.Append(columnar.F64(row.load))
	}
	df, err := columnar.NewDataFrame([]string{"rank", "load"}, []*columnar.Seq{ranks, load})
	if err != nil {
		panic(err)
	}
	return NewStaticTable(df)
}

func newTestEngine() *Engine {
	cat := NewCatalog(DefaultCatalog)
	cat.RegisterTable("cluster", "nodes", newNodesTable())
	cat.RegisterTable("cluster", "load", newLoadTable())

	mgr := extension.NewManager()
	ext := extension.NewSimpleExtension("engine")
	ext.Declare("engine.timeout_ms", "30000", "query timeout", false, nil, nil)
	mgr.Register(ext)

	return NewEngine(cat, mgr)
}

func TestEngineSelectStarAndWhere(t *testing.T) {
	e := newTestEngine()
	df, err := e.Query(context.Background(), "SELECT * FROM cluster.nodes WHERE rank = 1")
	require.NoError(t, err)
	require.Equal(t, 1, df.Size())
	idx := df.ColumnIndex("name")
	require.Equal(t, "node-b", df.Row(0)[idx].AsText())
}

func TestEngineOrderByAndLimit(t *testing.T) {
	e := newTestEngine()
	df, err := e.Query(context.Background(), "SELECT name FROM cluster.nodes ORDER BY name DESC LIMIT 2")
	require.NoError(t, err)
	require.Equal(t, 2, df.Size())
	require.Equal(t, "node-c", df.Row(0)[0].AsText())
	require.Equal(t, "node-b", df.Row(1)[0].AsText())
}

func TestEngineJoin(t *testing.T) {
	e := newTestEngine()
	df, err := e.Query(context.Background(),
		`SELECT nodes.name, load.load FROM cluster.nodes AS nodes JOIN cluster.load AS load ON nodes.rank = load.rank WHERE load.load > 0.5`)
	require.NoError(t, err)
	require.Equal(t, 1, df.Size())
	require.Equal(t, "node-b", df.Row(0)[0].AsText())
}

func TestEngineGroupByAggregate(t *testing.T) {
	e := newTestEngine()
	df, err := e.Query(context.Background(), "SELECT COUNT(*) FROM cluster.nodes")
	require.NoError(t, err)
	require.Equal(t, 1, df.Size())
	require.Equal(t, int64(3), df.Row(0)[0].AsI64())
}

func TestEngineShowTables(t *testing.T) {
	e := newTestEngine()
	df, err := e.Query(context.Background(), "SHOW TABLES")
	require.NoError(t, err)
	require.Equal(t, 2, df.Size())
}

func TestEngineSetForwardsToManager(t *testing.T) {
	e := newTestEngine()
	_, err := e.Query(context.Background(), "SET engine.timeout_ms = 5000")
	require.NoError(t, err)
	v, err := e.Options.Get("engine.timeout_ms")
	require.NoError(t, err)
	require.Equal(t, "5000", v)
}

func TestEngineMultipleSetStatements(t *testing.T) {
	e := newTestEngine()
	_, err := e.Query(context.Background(), "SET engine.timeout_ms = 1000; SET engine.timeout_ms = 2000")
	require.NoError(t, err)
	v, err := e.Options.Get("engine.timeout_ms")
	require.NoError(t, err)
	require.Equal(t, "2000", v)
}

func TestEngineFailedSetContinuesToNextStatement(t *testing.T) {
	e := newTestEngine()
	before, err := e.Query(context.Background(), "SHOW TABLES")
	require.NoError(t, err)

	df, err := e.Query(context.Background(), "SET unknown.key = 1; SHOW TABLES")
	require.NoError(t, err)
	require.Equal(t, before.Size(), df.Size())
}

func TestEngineUnknownTableError(t *testing.T) {
	e := newTestEngine()
	_, err := e.Query(context.Background(), "SELECT * FROM cluster.missing")
	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestEngineProcessEnvsScenario(t *testing.T) {
	require.NoError(t, os.Setenv("FOO", "BAR"))
	defer os.Unsetenv("FOO")

	cat := NewCatalog(DefaultCatalog)
	cat.RegisterTable("process", "envs", &fakeEnvsTable{})
	e := NewEngine(cat, nil)

	df, err := e.Query(context.Background(), "SELECT value FROM process.envs WHERE name = 'FOO'")
	require.NoError(t, err)
	require.Equal(t, 1, df.Size())
	require.Equal(t, "BAR", df.Row(0)[0].AsText())
}

// fakeEnvsTable mirrors tables.envsTable's shape without depending on
// the real os.Environ() snapshot, keeping this test hermetic.
type fakeEnvsTable struct{}

func (fakeEnvsTable) Schema() []string { return []string{"name", "value"} }

func (fakeEnvsTable) Scan(_ context.Context, _ []Filter) (*columnar.DataFrame, error) {
	names := columnar.NewSeqOf(columnar.TagText)
	values := columnar.NewSeqOf(columnar.TagText)
	for k, v := range map[string]string{"FOO": os.Getenv("FOO"), "PATH": os.Getenv("PATH")} {
		_ = names.Append(columnar.Text(k))
		_ = values.Append(columnar.Text(v))
	}
	return columnar.NewDataFrame([]string{"name", "value"}, []*columnar.Seq{names, values})
}

func TestParseStatementsSplitsOnSemicolon(t *testing.T) {
	stmts, err := ParseStatements("SET a = 1; SET b = 2")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
}

func TestParserRejectsGarbage(t *testing.T) {
	_, err := ParseStatements("SELECT FROM WHERE")
	require.Error(t, err)
}
