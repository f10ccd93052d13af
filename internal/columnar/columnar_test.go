package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeqAppendGetRoundTrip(t *testing.T) {
	cases := []Ele{I32(7), I64(-12345), F32(1.5), F64(3.14159), Text("hello"), URL("https://example.com"), DateTime(1700000000000000)}
	for _, e := range cases {
		s := NewSeq()
		require.NoError(t, s.Append(e))
		got := s.Get(s.Len() - 1)
		require.True(t, got.Equal(e), "tag=%s", e.Tag())
	}
}

func TestSeqGetPastEndReturnsNil(t *testing.T) {
	s := NewSeq()
	require.NoError(t, s.Append(I32(1)))
	require.True(t, s.Get(5).IsNil())
}

func TestSeqTagMismatchFails(t *testing.T) {
	s := NewSeq()
	require.NoError(t, s.Append(I32(1)))
	err := s.Append(Text("x"))
	require.Error(t, err)
}

func TestSeqNilAlwaysAppendable(t *testing.T) {
	s := NewSeq()
	require.NoError(t, s.Append(NilEle))
	require.Equal(t, TagNil, s.Tag())
	require.NoError(t, s.Append(I64(9)))
	require.Equal(t, TagI64, s.Tag())
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	build := func(tag Tag, vals []Ele) *Seq {
		s := NewSeqOf(tag)
		for _, v := range vals {
			require.NoError(t, s.Append(v))
		}
		return s
	}

	seqs := []*Seq{
		build(TagI32, []Ele{I32(1), I32(-5), I32(100), I32(100), I32(0)}),
		build(TagI64, []Ele{I64(1 << 40), I64(-2), I64(0)}),
		build(TagF32, []Ele{F32(1.5), F32(-2.25), F32(0)}),
		build(TagF64, []Ele{F64(1.0 / 3.0), F64(-1e10), F64(0)}),
		build(TagText, []Ele{Text("a"), Text("b"), Text("a"), Text("")}),
		build(TagDateTime, []Ele{DateTime(100), DateTime(200), DateTime(200)}),
	}

	for _, lvl := range []int{1, 5, 9} {
		for _, s := range seqs {
			data, cb, err := s.Compress(lvl)
			require.NoError(t, err)
			got, err := Decompress(data, cb)
			require.NoError(t, err)
			require.Equal(t, s.Len(), got.Len())
			for i := 0; i < s.Len(); i++ {
				require.True(t, s.Get(i).Equal(got.Get(i)), "tag=%s idx=%d lvl=%d", s.Tag(), i, lvl)
			}
		}
	}
}

func TestDataFrameInvariants(t *testing.T) {
	a := NewSeqOf(TagI32)
	require.NoError(t, a.Append(I32(1)))
	b := NewSeqOf(TagText)
	require.NoError(t, b.Append(Text("x")))
	require.NoError(t, b.Append(Text("y")))

	_, err := NewDataFrame([]string{"a", "b"}, []*Seq{a, b})
	require.Error(t, err, "mismatched column lengths must fail")

	require.NoError(t, b.Append(NilEle))
	_, err = NewDataFrame([]string{"a"}, []*Seq{a, b})
	require.Error(t, err, "name/column count mismatch must fail")
}

func TestTimeSeriesAppendMonotonic(t *testing.T) {
	ts := NewTimeSeries("cpu", TagF64, 4, 2, 0)
	require.NoError(t, ts.Append(100, F64(1)))
	require.NoError(t, ts.Append(200, F64(2)))
	err := ts.Append(150, F64(3))
	require.ErrorIs(t, err, ErrNonMonotonic)
}

func TestTimeSeriesSealsAndCompresses(t *testing.T) {
	ts := NewTimeSeries("cpu", TagF64, 3, 2, 0)
	for i := int64(0); i < 10; i++ {
		require.NoError(t, ts.Append(i*10, F64(float64(i))))
	}
	require.GreaterOrEqual(t, ts.PageCount(), 2)

	df, err := ts.Range(0, 1000)
	require.NoError(t, err)
	require.Equal(t, 10, df.Size())
	for i := 0; i < 10; i++ {
		require.Equal(t, float64(i), df.Row(i)[1].AsF64())
	}
}

func TestTimeSeriesDiscardPolicy(t *testing.T) {
	ts := NewTimeSeries("cpu", TagI64, 2, 0, 2)
	for i := int64(0); i < 20; i++ {
		require.NoError(t, ts.Append(i, I64(i)))
	}
	require.LessOrEqual(t, ts.PageCount(), 2)
}
