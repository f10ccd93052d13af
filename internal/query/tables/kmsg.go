package tables

import (
	"context"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/query"
)

// kmsgTable exposes process.kmsg: timestamp/facility/level/message rows
// from the kernel ring buffer, grounded on original_source's
// plugins/kmsg.rs schema. Reading /dev/kmsg is Linux-only
// (kmsg_linux.go); other platforms return an empty table.
type kmsgTable struct{}

func (t *kmsgTable) Schema() []string { return []string{"timestamp", "facility", "level", "message"} }

func (t *kmsgTable) Scan(_ context.Context, _ []query.Filter) (*columnar.DataFrame, error) {
	entries, err := readKmsg()
	if err != nil {
		return nil, err
	}
	ts := columnar.NewSeqOf(columnar.TagDateTime)
	facility := columnar.NewSeqOf(columnar.TagText)
	level := columnar.NewSeqOf(columnar.TagText)
	message := columnar.NewSeqOf(columnar.TagText)
	for _, e := range entries {
		_ = ts.Append(columnar.DateTime(e.timestampUs))
		_ = facility.Append(columnar.Text(e.facility))
		_ = level.Append(columnar.Text(e.level))
		_ = message.Append(columnar.Text(e.message))
	}
	return columnar.NewDataFrame(
		[]string{"timestamp", "facility", "level", "message"},
		[]*columnar.Seq{ts, facility, level, message},
	)
}

type kmsgEntry struct {
	timestampUs              int64
	facility, level, message string
}
