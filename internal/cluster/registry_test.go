package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestRegistryTimestampTiebreak(t *testing.T) {
	r := NewRegistry(nil)
	rank := 0
	r.Put(Node{Host: "h1", Rank: &rank, TimestampUs: 200})
	r.Put(Node{Host: "h1", Rank: &rank, TimestampUs: 100})

	nodes := r.List()
	require.Len(t, nodes, 1)
	require.Equal(t, int64(200), nodes[0].TimestampUs)
}

func TestRegistryPutIdempotent(t *testing.T) {
	r := NewRegistry(nil)
	rank := intp(1)
	n := Node{Host: "h2", Rank: rank, TimestampUs: 50}
	r.Put(n)
	r.Put(n)
	require.Len(t, r.List(), 1)
}

func TestRegistryStampsZeroTimestamp(t *testing.T) {
	r := NewRegistry(nil)
	rank := intp(2)
	r.Put(Node{Host: "h3", Rank: rank})
	nodes := r.List()
	require.Len(t, nodes, 1)
	require.Greater(t, nodes[0].TimestampUs, int64(0))
}

func TestRegistryMissingRankIsNegativeOne(t *testing.T) {
	n := Node{}
	require.Equal(t, -1, n.RankOr())
}
