package columnar

// CodeBook captures everything needed to reconstruct a compressed Seq:
// the dictionary for text columns, the delta base for integer columns,
// and the element count. It is opaque to
// callers and must travel alongside the compressed bytes.
type CodeBook struct {
	Tag        Tag
	Dictionary []string // text: index -> string
	Base       int64    // integer columns: delta base (first value)
	Count      int      // number of elements encoded
}
