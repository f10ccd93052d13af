package columnar

import (
	"fmt"
	"sync"
)

// PageKind discriminates a TimeSeries page's storage form.
type PageKind int

const (
	PageRaw PageKind = iota
	PageCompressed
	PageRef
)

// Page is one segment of a TimeSeries: either a live Raw column still
// accepting appends, a sealed Compressed blob, or a Ref left by the
// discard policy (its data is gone and Materialize returns an error).
type Page struct {
	Kind       PageKind
	Times      []int64 // one timestamp per row; kept for Raw and Compressed pages
	Raw        *Seq
	Compressed []byte
	CodeBook   *CodeBook
	RefHandle  string
}

func (p *Page) Len() int {
	if p.Kind == PageRaw {
		return p.Raw.Len()
	}
	if p.CodeBook != nil {
		return p.CodeBook.Count
	}
	return len(p.Times)
}

// Materialize reconstructs a Raw-equivalent Seq for this page.
func (p *Page) Materialize() (*Seq, error) {
	switch p.Kind {
	case PageRaw:
		return p.Raw, nil
	case PageCompressed:
		return Decompress(p.Compressed, p.CodeBook)
	case PageRef:
		return nil, fmt.Errorf("columnar: page %q has been discarded and is not externally resolvable in this build", p.RefHandle)
	}
	return nil, fmt.Errorf("columnar: unknown page kind %d", p.Kind)
}

// TimeSeries is a named, ordered, append-only series of rows keyed by a
// non-decreasing microsecond timestamp. Values are appended to the
// current (tail) Raw page; once that page's Seq reaches ChunkSize rows
// it is sealed, optionally compressed, and a fresh Raw page begins.
type TimeSeries struct {
	mu                   sync.RWMutex
	Name                 string
	ValueTag             Tag
	ChunkSize            int
	CompressionThreshold int // pages with >= this many rows get compressed on seal
	MaxPages             int // discard policy: 0 means unbounded

	pages   []*Page
	lastTS  int64
	hasLast bool
}

// NewTimeSeries constructs an empty series. chunkSize<=0 defaults to 1024.
func NewTimeSeries(name string, valueTag Tag, chunkSize, compressionThreshold, maxPages int) *TimeSeries {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	ts := &TimeSeries{
		Name:                 name,
		ValueTag:             valueTag,
		ChunkSize:            chunkSize,
		CompressionThreshold: compressionThreshold,
		MaxPages:             maxPages,
	}
	ts.pages = append(ts.pages, &Page{Kind: PageRaw, Raw: NewSeqOf(valueTag)})
	return ts
}

// ErrNonMonotonic is returned by Append when t is earlier than the
// series' last recorded timestamp; an equal timestamp is accepted.
var ErrNonMonotonic = fmt.Errorf("columnar: timestamp is earlier than the last appended timestamp")

// Append adds one row at timestamp t (microseconds since epoch).
func (ts *TimeSeries) Append(t int64, value Ele) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.hasLast && t < ts.lastTS {
		return ErrNonMonotonic
	}
	ts.lastTS = t
	ts.hasLast = true

	tail := ts.pages[len(ts.pages)-1]
	tail.Times = append(tail.Times, t)
	if err := tail.Raw.Append(value); err != nil {
		return err
	}

	if tail.Raw.Len() >= ts.ChunkSize {
		ts.sealTail()
		ts.pages = append(ts.pages, &Page{Kind: PageRaw, Raw: NewSeqOf(ts.ValueTag)})
		ts.applyDiscardLocked()
	}
	return nil
}

// sealTail compresses the current tail page in place if it qualifies.
func (ts *TimeSeries) sealTail() {
	tail := ts.pages[len(ts.pages)-1]
	if ts.CompressionThreshold <= 0 || tail.Raw.Len() < ts.CompressionThreshold {
		return
	}
	data, cb, err := tail.Raw.Compress(1)
	if err != nil {
		return
	}
	tail.Kind = PageCompressed
	tail.Compressed = data
	tail.CodeBook = cb
	tail.Raw = nil
}

func (ts *TimeSeries) applyDiscardLocked() {
	if ts.MaxPages <= 0 {
		return
	}
	for len(ts.pages) > ts.MaxPages {
		oldest := ts.pages[0]
		oldest.Kind = PageRef
		oldest.RefHandle = fmt.Sprintf("%s#%d", ts.Name, len(ts.pages))
		oldest.Compressed = nil
		oldest.CodeBook = nil
		oldest.Raw = nil
		ts.pages = ts.pages[1:]
	}
}

// Range materializes the rows with t0 <= ts < t1 into a two-column
// DataFrame ("ts", "value"), reconstructing compressed pages on demand.
func (ts *TimeSeries) Range(t0, t1 int64) (*DataFrame, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	tsCol := NewSeqOf(TagDateTime)
	valCol := NewSeqOf(ts.ValueTag)

	for _, p := range ts.pages {
		seq, err := p.Materialize()
		if err != nil {
			continue // discarded pages are silently skipped, per spec's best-effort Range
		}
		for i := 0; i < seq.Len() && i < len(p.Times); i++ {
			t := p.Times[i]
			if t < t0 || t >= t1 {
				continue
			}
			_ = tsCol.Append(DateTime(t))
			_ = valCol.Append(seq.Get(i))
		}
	}
	return NewDataFrame([]string{"ts", "value"}, []*Seq{tsCol, valCol})
}

// PageCount returns the number of retained pages (for tests/diagnostics).
func (ts *TimeSeries) PageCount() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.pages)
}
