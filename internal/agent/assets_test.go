package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchCodeRootEmptyRootIsNoop(t *testing.T) {
	stop := WatchCodeRoot("", func(string) { t.Fatal("onChange should never fire") })
	stop()
}

func TestWatchCodeRootFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 4)
	stop := WatchCodeRoot(dir, func(path string) { changed <- path })
	defer stop()

	path := filepath.Join(dir, "probe.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	select {
	case got := <-changed:
		require.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was never invoked for a code root write")
	}
}
