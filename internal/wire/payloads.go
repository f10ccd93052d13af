package wire

import "github.com/probing-go/probing/internal/columnar"

// Query is the /query request payload.
type Query struct {
	Expr string            `json:"expr"`
	Opts map[string]string `json:"opts,omitempty"`
}

// DataKind discriminates the Data union's concrete contents.
type DataKind string

const (
	DataNil        DataKind = "nil"
	DataError      DataKind = "error"
	DataFrame      DataKind = "dataframe"
	DataTimeSeries DataKind = "timeseries"
)

// QueryError is the JSON shape of a failed query/extension-call/probe-call.
type QueryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// FrameJSON is the wire representation of a columnar.DataFrame: parallel
// name/tag arrays plus rows rendered as JSON-native values (strings for
// Text/URL, microseconds since epoch for DateTime, numbers for the
// rest). This keeps /query's default
// (non-Arrow) reply human-readable and trivially decodable by the
// browser UI bundle.
type FrameJSON struct {
	Names []string `json:"names"`
	Tags  []string `json:"tags"`
	Rows  [][]any  `json:"rows"`
}

// Data is the tagged reply union for /query: exactly one of Err/Frame is
// populated, selected by Kind.
type Data struct {
	Kind  DataKind    `json:"kind"`
	Err   *QueryError `json:"error,omitempty"`
	Frame *FrameJSON  `json:"frame,omitempty"`
}

// FrameToJSON converts a materialized DataFrame into its wire form.
func FrameToJSON(df *columnar.DataFrame) *FrameJSON {
	tags := make([]string, len(df.Cols))
	for i, c := range df.Cols {
		tags[i] = c.Tag().String()
	}
	rows := make([][]any, df.Size())
	for i := 0; i < df.Size(); i++ {
		row := df.Row(i)
		out := make([]any, len(row))
		for j, e := range row {
			out[j] = eleToJSON(e)
		}
		rows[i] = out
	}
	return &FrameJSON{Names: df.Names, Tags: tags, Rows: rows}
}

func eleToJSON(e columnar.Ele) any {
	switch e.Tag() {
	case columnar.TagNil:
		return nil
	case columnar.TagI32:
		return e.AsI32()
	case columnar.TagI64:
		return e.AsI64()
	case columnar.TagF32:
		return e.AsF32()
	case columnar.TagF64:
		return e.AsF64()
	case columnar.TagText, columnar.TagURL:
		return e.AsText()
	case columnar.TagDateTime:
		return e.AsDateTimeUs()
	}
	return nil
}
