package tables

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvsTableFindsSetVariable(t *testing.T) {
	require.NoError(t, os.Setenv("PROBING_TEST_VAR", "hello"))
	defer os.Unsetenv("PROBING_TEST_VAR")

	tbl := &envsTable{}
	df, err := tbl.Scan(context.Background(), nil)
	require.NoError(t, err)

	found := false
	nameIdx := df.ColumnIndex("name")
	valueIdx := df.ColumnIndex("value")
	for i := 0; i < df.Size(); i++ {
		row := df.Row(i)
		if row[nameIdx].AsText() == "PROBING_TEST_VAR" {
			require.Equal(t, "hello", row[valueIdx].AsText())
			found = true
		}
	}
	require.True(t, found)
}

func TestNamespaceExposesAllThreeTables(t *testing.T) {
	ns := NewNamespace()
	require.Equal(t, "process", ns.Name())
	tables := ns.Tables()
	require.Contains(t, tables, "envs")
	require.Contains(t, tables, "threads")
	require.Contains(t, tables, "kmsg")
}
