package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/probing-go/probing/internal/cluster"
	"github.com/probing-go/probing/internal/columnar"
	"github.com/probing-go/probing/internal/extension"
	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/query"
	"github.com/probing-go/probing/internal/wire"
)

func newTestMux(t *testing.T, token string) (http.Handler, string) {
	t.Helper()
	catalog := query.NewCatalog(query.DefaultCatalog)
	names := columnar.NewSeqOf(columnar.TagText)
	_ = names.Append(columnar.Text("probe-0"))
	frame, err := columnar.NewDataFrame([]string{"name"}, []*columnar.Seq{names})
	require.NoError(t, err)
	catalog.RegisterTable("test", "hosts", query.NewStaticTable(frame))

	engine := query.NewEngine(catalog, extension.NewManager())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o600))

	assets := fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("<html>ok</html>")}}
	factory := probe.NewFactory(nil)

	var fsRoot fs.FS = assets
	mux := NewMux(RoutesConfig{
		Engine:         engine,
		Registry:       cluster.NewRegistry(nil),
		ProbeFactory:   factory,
		SharedProbe:    factory.New("shared"),
		Extensions:     extension.NewManager(),
		Assets:         fsRoot,
		FileWhitelist:  []string{dir},
		MaxRequestSize: defaultMaxRequestSize,
	})

	auth, err := NewAuth(token, "", "")
	require.NoError(t, err)
	top := http.NewServeMux()
	top.Handle("/", auth.Middleware(mux, assetPrefixes))
	return top, dir
}

func TestServerQueryRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t, "")
	body := strings.NewReader(`{"expr":"SELECT * FROM test.hosts"}`)
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var data wire.Data
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Equal(t, wire.DataFrame, data.Kind)
	require.Equal(t, []string{"name"}, data.Frame.Names)
}

func TestServerUnauthorizedWithoutToken(t *testing.T) {
	mux, _ := newTestMux(t, "s3cret")
	req := httptest.NewRequest(http.MethodGet, "/apis/overview", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
}

func TestServerBearerTokenAuthorized(t *testing.T) {
	mux, _ := newTestMux(t, "s3cret")
	req := httptest.NewRequest(http.MethodGet, "/apis/overview", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServerNodesRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t, "")
	put := httptest.NewRequest(http.MethodPut, "/apis/nodes",
		strings.NewReader(`{"host":"h1","addr":"10.0.0.1:9700","rank":0,"timestamp":0}`))
	putRec := httptest.NewRecorder()
	mux.ServeHTTP(putRec, put)
	require.Equal(t, http.StatusOK, putRec.Code)

	get := httptest.NewRequest(http.MethodGet, "/apis/nodes", nil)
	getRec := httptest.NewRecorder()
	mux.ServeHTTP(getRec, get)
	require.Equal(t, http.StatusOK, getRec.Code)

	var nodes []cluster.Node
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	require.Greater(t, nodes[0].TimestampUs, int64(0))
}

func TestServerFilesWhitelist(t *testing.T) {
	mux, dir := newTestMux(t, "")

	ok := httptest.NewRequest(http.MethodGet, "/apis/files?path="+filepath.Join(dir, "a.txt"), nil)
	okRec := httptest.NewRecorder()
	mux.ServeHTTP(okRec, ok)
	require.Equal(t, http.StatusOK, okRec.Code)
	require.Equal(t, "hello", okRec.Body.String())

	bad := httptest.NewRequest(http.MethodGet, "/apis/files?path=/etc/passwd", nil)
	badRec := httptest.NewRecorder()
	mux.ServeHTTP(badRec, bad)
	require.Equal(t, http.StatusForbidden, badRec.Code)
}

func TestServerStaticFallback(t *testing.T) {
	mux, _ := newTestMux(t, "")
	req := httptest.NewRequest(http.MethodGet, "/some/app/route", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestBodySizeLimitRejectsOversizedContentLength(t *testing.T) {
	mux, _ := newTestMux(t, "")
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"expr":"SELECT 1"}`))
	req.ContentLength = defaultMaxRequestSize + 1
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestFlamegraphFailsWithoutSampler(t *testing.T) {
	mux, _ := newTestMux(t, "")
	req := httptest.NewRequest(http.MethodGet, "/apis/flamegraph", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}
