package wire

import (
	"testing"

	"github.com/probing-go/probing/internal/columnar"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	q := Query{Expr: "SELECT 1"}
	env, err := Wrap(q, "")
	require.NoError(t, err)
	require.NotEmpty(t, env.MessageID)

	data, err := Encode(env)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, env.Version, got.Version)
	require.Equal(t, env.MessageID, got.MessageID)

	var q2 Query
	require.NoError(t, Unwrap(got, &q2))
	require.Equal(t, q.Expr, q2.Expr)
}

func TestDecodeRejectsNewerMajorVersion(t *testing.T) {
	env := &Envelope{Version: Version{Major: CurrentVersion.Major + 1}, Payload: []byte("{}")}
	data, err := Encode(env)
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	var verErr *ErrUnsupportedVersion
	require.ErrorAs(t, err, &verErr)
}

func TestFrameToJSON(t *testing.T) {
	col := columnar.NewSeqOf(columnar.TagText)
	require.NoError(t, col.Append(columnar.Text("BAR")))
	df, err := columnar.NewDataFrame([]string{"value"}, []*columnar.Seq{col})
	require.NoError(t, err)

	fj := FrameToJSON(df)
	require.Equal(t, []string{"value"}, fj.Names)
	require.Equal(t, 1, len(fj.Rows))
	require.Equal(t, "BAR", fj.Rows[0][0])
}
