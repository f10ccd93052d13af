package reporter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probing-go/probing/internal/cluster"
)

func TestReporterTickRankZeroAppliesLocally(t *testing.T) {
	t.Setenv("RANK", "0")
	registry := cluster.NewRegistry(nil)
	r := New(registry, "", "127.0.0.1:9700", time.Millisecond)
	r.tick(context.Background())

	nodes := registry.List()
	require.Len(t, nodes, 1)
	require.Equal(t, "127.0.0.1:9700", nodes[0].Addr)
}

func TestReporterTickNonZeroPutsRemote(t *testing.T) {
	t.Setenv("RANK", "1")
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotMethod = req.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	registry := cluster.NewRegistry(nil)
	r := New(registry, srv.Listener.Addr().String(), "127.0.0.1:9701", time.Millisecond)
	r.tick(context.Background())

	require.Equal(t, http.MethodPut, gotMethod)
	require.Empty(t, registry.List()) // remote path never touches the local registry
}

func TestReporterTickLogsAndContinuesOnFailure(t *testing.T) {
	t.Setenv("RANK", "1")
	registry := cluster.NewRegistry(nil)
	r := New(registry, "127.0.0.1:1", "addr", time.Millisecond) // unroutable, must fail fast
	require.NotPanics(t, func() { r.tick(context.Background()) })
}

func TestNodeFromEnvReadsAllFields(t *testing.T) {
	for k, v := range map[string]string{
		"RANK": "2", "LOCAL_RANK": "1", "WORLD_SIZE": "4",
		"GROUP_RANK": "0", "GROUP_WORLD_SIZE": "1",
		"ROLE_NAME": "trainer", "ROLE_RANK": "2", "ROLE_WORLD_SIZE": "4",
	} {
		t.Setenv(k, v)
	}
	defer os.Unsetenv("RANK")

	node := nodeFromEnv("h:1")
	require.Equal(t, 2, *node.Rank)
	require.Equal(t, 1, *node.LocalRank)
	require.Equal(t, "trainer", *node.RoleName)
}
