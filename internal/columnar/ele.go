// Package columnar implements the agent's in-memory columnar data model:
// scalar elements, typed columns, data frames, and compressed time series.
package columnar

import (
	"fmt"
	"time"
)

// Tag identifies the concrete type held by an Ele or Seq.
type Tag int

const (
	TagNil Tag = iota
	TagI32
	TagI64
	TagF32
	TagF64
	TagText
	TagURL
	TagDateTime
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "nil"
	case TagI32:
		return "i32"
	case TagI64:
		return "i64"
	case TagF32:
		return "f32"
	case TagF64:
		return "f64"
	case TagText:
		return "text"
	case TagURL:
		return "url"
	case TagDateTime:
		return "datetime"
	default:
		return "?"
	}
}

// Ele is a tagged-union scalar value. Nil is a distinct value, not an
// absence; a Seq never stores it as such: appending Nil to an untyped
// column stores nothing, and to a typed column stores that tag's zero
// value (see Seq.Append).
type Ele struct {
	tag  Tag
	i    int64
	f    float64
	text string
	dt   int64 // microseconds since epoch, used when tag == TagDateTime
}

// NilEle is the single Nil value.
var NilEle = Ele{tag: TagNil}

func I32(v int32) Ele              { return Ele{tag: TagI32, i: int64(v)} }
func I64(v int64) Ele              { return Ele{tag: TagI64, i: v} }
func F32(v float32) Ele            { return Ele{tag: TagF32, f: float64(v)} }
func F64(v float64) Ele            { return Ele{tag: TagF64, f: v} }
func Text(v string) Ele            { return Ele{tag: TagText, text: v} }
func URL(v string) Ele             { return Ele{tag: TagURL, text: v} }
func DateTime(us int64) Ele        { return Ele{tag: TagDateTime, dt: us} }
func DateTimeFrom(t time.Time) Ele { return Ele{tag: TagDateTime, dt: t.UnixMicro()} }

func (e Ele) Tag() Tag    { return e.tag }
func (e Ele) IsNil() bool { return e.tag == TagNil }

func (e Ele) AsI32() int32        { return int32(e.i) }
func (e Ele) AsI64() int64        { return e.i }
func (e Ele) AsF32() float32      { return float32(e.f) }
func (e Ele) AsF64() float64      { return e.f }
func (e Ele) AsText() string      { return e.text }
func (e Ele) AsDateTimeUs() int64 { return e.dt }

// Equal performs structural equality, including the Nil tag.
func (e Ele) Equal(o Ele) bool {
	if e.tag != o.tag {
		return false
	}
	switch e.tag {
	case TagNil:
		return true
	case TagI32, TagI64:
		return e.i == o.i
	case TagF32, TagF64:
		return e.f == o.f
	case TagText, TagURL:
		return e.text == o.text
	case TagDateTime:
		return e.dt == o.dt
	}
	return false
}

// String renders a human-readable form, used for SQL text serialization
// and the CallEval text reply path.
func (e Ele) String() string {
	switch e.tag {
	case TagNil:
		return "NULL"
	case TagI32:
		return fmt.Sprintf("%d", int32(e.i))
	case TagI64:
		return fmt.Sprintf("%d", e.i)
	case TagF32:
		return fmt.Sprintf("%g", float32(e.f))
	case TagF64:
		return fmt.Sprintf("%g", e.f)
	case TagText:
		return e.text
	case TagURL:
		return e.text
	case TagDateTime:
		return time.UnixMicro(e.dt).UTC().Format(time.RFC3339Nano)
	default:
		return "?"
	}
}
