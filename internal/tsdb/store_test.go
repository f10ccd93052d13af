package tsdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probing-go/probing/internal/columnar"
)

func TestStoreRegisterRejectsDuplicate(t *testing.T) {
	s := NewStore()
	_, err := s.Register("cpu", columnar.TagF64, DefaultSeriesOptions)
	require.NoError(t, err)
	_, err = s.Register("cpu", columnar.TagF64, DefaultSeriesOptions)
	require.Error(t, err)
	require.IsType(t, &ErrAlreadyRegistered{}, err)
}

func TestStoreAppendAndRange(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append("mem", columnar.TagF64, 100, columnar.F64(1.5)))
	require.NoError(t, s.Append("mem", columnar.TagF64, 200, columnar.F64(2.5)))

	df, err := s.Range("mem", 0, 1000)
	require.NoError(t, err)
	require.Equal(t, 2, df.Size())
}

func TestStoreGetUnknownSeries(t *testing.T) {
	s := NewStore()
	_, err := s.Get("missing")
	require.Error(t, err)
	require.IsType(t, &ErrUnknownSeries{}, err)
}

func TestStoreNamesListsRegistered(t *testing.T) {
	s := NewStore()
	s.GetOrRegister("a", columnar.TagI64)
	s.GetOrRegister("b", columnar.TagI64)
	require.ElementsMatch(t, []string{"a", "b"}, s.Names())
}
