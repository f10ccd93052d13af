package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probing-go/probing/internal/cluster"
	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/extension"
	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/query"
	"github.com/probing-go/probing/internal/server"
	"github.com/probing-go/probing/internal/wire"
)

func newTestServer(t *testing.T) (*httptest.Server, *cluster.Registry) {
	t.Helper()
	catalog := query.NewCatalog(query.DefaultCatalog)
	names := columnar.NewSeqOf(columnar.TagText)
	_ = names.Append(columnar.Text("probe-0"))
	frame, err := columnar.NewDataFrame([]string{"name"}, []*columnar.Seq{names})
	require.NoError(t, err)
	catalog.RegisterTable("test", "hosts", query.NewStaticTable(frame))

	engine := query.NewEngine(catalog, extension.NewManager())
	registry := cluster.NewRegistry(nil)
	factory := probe.NewFactory(nil)

	mux := server.NewMux(server.RoutesConfig{
		Engine:       engine,
		Registry:     registry,
		ProbeFactory: factory,
		SharedProbe:  factory.New("shared"),
		Extensions:   extension.NewManager(),
	})
	return httptest.NewServer(mux), registry
}

func TestClientQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	c := DialTCP(srv.URL, "")
	data, err := c.Query(context.Background(), "SELECT * FROM test.hosts", nil)
	require.NoError(t, err)
	require.Equal(t, wire.DataFrame, data.Kind)
	require.Equal(t, []string{"name"}, data.Frame.Names)
}

func TestClientProbeEnableDisable(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	c := DialTCP(srv.URL, "")
	reply, err := c.Probe(context.Background(), wire.ProbeCall{Kind: wire.CallEnable, Feature: "sampler"})
	require.NoError(t, err)
	require.Equal(t, wire.ReturnEnable, reply.Kind)

	reply, err = c.Probe(context.Background(), wire.ProbeCall{Kind: wire.CallDisable, Feature: "sampler"})
	require.NoError(t, err)
	require.Equal(t, wire.ReturnDisable, reply.Kind)
}

func TestClientNodesRoundTrip(t *testing.T) {
	srv, registry := newTestServer(t)
	defer srv.Close()

	rank := 0
	registry.Put(cluster.Node{Host: "h1", Addr: "10.0.0.1:9700", Rank: &rank})

	c := DialTCP(srv.URL, "")
	nodes, err := c.Nodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
}

func TestClientDecodesErrorReplyDespiteStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	c := DialTCP(srv.URL, "")
	_, err := c.Probe(context.Background(), wire.ProbeCall{Kind: "bogus"})
	require.NoError(t, err) // the handler answers 422 with a decodable ReturnErr body, which the client returns as a reply
}
