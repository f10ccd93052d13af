package tables

import (
	"context"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/query"
)

// threadsTable exposes process.threads: one row per OS thread of the
// agent's host process. The Linux implementation (threads_linux.go)
// reads /proc/<pid>/task; other platforms return an empty table since
// no equivalently cheap introspection exists.
type threadsTable struct {
	pid int
}

func newThreadsTable(pid int) *threadsTable { return &threadsTable{pid: pid} }

func (t *threadsTable) Schema() []string {
	return []string{"tid", "name", "state", "utime_ticks", "stime_ticks"}
}

func (t *threadsTable) Scan(ctx context.Context, filters []query.Filter) (*columnar.DataFrame, error) {
	rows, err := listThreads(t.pid)
	if err != nil {
		return nil, err
	}
	tid := columnar.NewSeqOf(columnar.TagI32)
	name := columnar.NewSeqOf(columnar.TagText)
	state := columnar.NewSeqOf(columnar.TagText)
	utime := columnar.NewSeqOf(columnar.TagI64)
	stime := columnar.NewSeqOf(columnar.TagI64)
	for _, r := range rows {
		_ = tid.Append(columnar.I32(r.tid))
		_ = name.Append(columnar.Text(r.name))
		_ = state.Append(columnar.Text(r.state))
		_ = utime.Append(columnar.I64(r.utimeTicks))
		_ = stime.Append(columnar.I64(r.stimeTicks))
	}
	return columnar.NewDataFrame(
		[]string{"tid", "name", "state", "utime_ticks", "stime_ticks"},
		[]*columnar.Seq{tid, name, state, utime, stime},
	)
}

type threadRow struct {
	tid                    int32
	name, state            string
	utimeTicks, stimeTicks int64
}
