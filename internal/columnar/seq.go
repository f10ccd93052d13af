package columnar

import "fmt"

// Seq is a homogeneous column of scalars. A freshly constructed Seq has
// tag TagNil and unknown element type; the first Append promotes it to
// the tag of the appended element, per spec: "the empty column of
// unknown type".
type Seq struct {
	tag   Tag
	i32   []int32
	i64   []int64
	f32   []float32
	f64   []float64
	text  []string
	url   []string
	dtime []int64
}

// NewSeq returns an empty, untyped column.
func NewSeq() *Seq { return &Seq{tag: TagNil} }

// NewSeqOf returns an empty column pre-promoted to tag.
func NewSeqOf(tag Tag) *Seq { return &Seq{tag: tag} }

func (s *Seq) Tag() Tag { return s.tag }

// Len returns the number of elements.
func (s *Seq) Len() int {
	switch s.tag {
	case TagNil:
		return 0
	case TagI32:
		return len(s.i32)
	case TagI64:
		return len(s.i64)
	case TagF32:
		return len(s.f32)
	case TagF64:
		return len(s.f64)
	case TagText:
		return len(s.text)
	case TagURL:
		return len(s.url)
	case TagDateTime:
		return len(s.dtime)
	}
	return 0
}

// NBytes is an approximate resident size of the column's values.
// TimeSeries pages seal by row count (ChunkSize), not by NBytes.
func (s *Seq) NBytes() int {
	switch s.tag {
	case TagI32:
		return len(s.i32) * 4
	case TagI64, TagDateTime:
		return s.Len() * 8
	case TagF32:
		return len(s.f32) * 4
	case TagF64:
		return len(s.f64) * 8
	case TagText, TagURL:
		n := 0
		strs := s.text
		if s.tag == TagURL {
			strs = s.url
		}
		for _, t := range strs {
			n += len(t)
		}
		return n
	}
	return 0
}

// ErrTagMismatch is returned by Append when the element's tag doesn't
// match the column's established tag.
type ErrTagMismatch struct {
	Column Tag
	Got    Tag
}

func (e *ErrTagMismatch) Error() string {
	return fmt.Sprintf("columnar: cannot append %s into column of tag %s", e.Got, e.Column)
}

// Append adds e to the column. Appending Nil into any column is always
// legal and stores a zero-value slot consistent with the column's tag
// (or leaves the column untyped if it was already TagNil). Appending a
// typed element into a TagNil column promotes the column to that tag.
func (s *Seq) Append(e Ele) error {
	if s.tag == TagNil && e.tag != TagNil {
		s.tag = e.tag
	}
	if e.tag != TagNil && e.tag != s.tag {
		return &ErrTagMismatch{Column: s.tag, Got: e.tag}
	}
	tag := s.tag
	if e.tag == TagNil {
		tag = s.tag
	}
	switch tag {
	case TagNil:
		// still untyped; nothing to store
		return nil
	case TagI32:
		s.i32 = append(s.i32, int32(e.i))
	case TagI64:
		s.i64 = append(s.i64, e.i)
	case TagF32:
		s.f32 = append(s.f32, float32(e.f))
	case TagF64:
		s.f64 = append(s.f64, e.f)
	case TagText:
		s.text = append(s.text, e.text)
	case TagURL:
		s.url = append(s.url, e.text)
	case TagDateTime:
		v := e.dt
		s.dtime = append(s.dtime, v)
	}
	return nil
}

// Get returns the element at idx, or Nil if idx is out of range.
func (s *Seq) Get(idx int) Ele {
	if idx < 0 || idx >= s.Len() {
		return NilEle
	}
	switch s.tag {
	case TagI32:
		return I32(s.i32[idx])
	case TagI64:
		return I64(s.i64[idx])
	case TagF32:
		return F32(s.f32[idx])
	case TagF64:
		return F64(s.f64[idx])
	case TagText:
		return Text(s.text[idx])
	case TagURL:
		return URL(s.url[idx])
	case TagDateTime:
		return DateTime(s.dtime[idx])
	}
	return NilEle
}

// Slice returns a new Seq containing elements [lo, hi).
func (s *Seq) Slice(lo, hi int) *Seq {
	out := NewSeqOf(s.tag)
	for i := lo; i < hi && i < s.Len(); i++ {
		_ = out.Append(s.Get(i))
	}
	return out
}
