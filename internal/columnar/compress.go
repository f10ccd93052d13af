package columnar

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Compress encodes s into a self-contained byte slice plus the CodeBook
// required to decode it. level is accepted for interface symmetry with
// the original design (faster/smaller trade-off) but this implementation
// uses a single fixed scheme per tag: delta+varint for integers,
// delta-XOR+varint for floats (the XOR of consecutive IEEE-754 bit
// patterns is dominated by leading zero bits for slowly varying series,
// which varint collapses; no bit shuffling or entropy coder is applied),
// and dictionary encoding for text.
func (s *Seq) Compress(level int) ([]byte, *CodeBook, error) {
	cb := &CodeBook{Tag: s.tag, Count: s.Len()}
	switch s.tag {
	case TagNil:
		return nil, cb, nil
	case TagI32:
		vals := make([]int64, len(s.i32))
		for i, v := range s.i32 {
			vals[i] = int64(v)
		}
		return compressInts(vals, cb), cb, nil
	case TagI64, TagDateTime:
		vals := s.i64
		if s.tag == TagDateTime {
			vals = s.dtime
		}
		return compressInts(vals, cb), cb, nil
	case TagF32:
		bits := make([]uint64, len(s.f32))
		for i, v := range s.f32 {
			bits[i] = uint64(math.Float32bits(v))
		}
		return compressFloatBits(bits), cb, nil
	case TagF64:
		bits := make([]uint64, len(s.f64))
		for i, v := range s.f64 {
			bits[i] = math.Float64bits(v)
		}
		return compressFloatBits(bits), cb, nil
	case TagText, TagURL:
		strs := s.text
		if s.tag == TagURL {
			strs = s.url
		}
		return compressText(strs, cb), cb, nil
	}
	return nil, nil, fmt.Errorf("columnar: unsupported tag %s for compress", s.tag)
}

// Decompress reconstructs a Seq from data encoded by Compress, given the
// CodeBook produced alongside it.
func Decompress(data []byte, cb *CodeBook) (*Seq, error) {
	out := NewSeqOf(cb.Tag)
	switch cb.Tag {
	case TagNil:
		return out, nil
	case TagI32:
		vals := decompressInts(data, cb.Count)
		for _, v := range vals {
			if err := out.Append(I32(int32(v))); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagI64:
		vals := decompressInts(data, cb.Count)
		for _, v := range vals {
			if err := out.Append(I64(v)); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagDateTime:
		vals := decompressInts(data, cb.Count)
		for _, v := range vals {
			if err := out.Append(DateTime(v)); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagF32:
		bits := decompressFloatBits(data, cb.Count)
		for _, b := range bits {
			if err := out.Append(F32(math.Float32frombits(uint32(b)))); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagF64:
		bits := decompressFloatBits(data, cb.Count)
		for _, b := range bits {
			if err := out.Append(F64(math.Float64frombits(b))); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagText:
		strs := decompressText(data, cb)
		for _, t := range strs {
			if err := out.Append(Text(t)); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagURL:
		strs := decompressText(data, cb)
		for _, t := range strs {
			if err := out.Append(URL(t)); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("columnar: unsupported tag %s for decompress", cb.Tag)
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func compressInts(vals []int64, cb *CodeBook) []byte {
	buf := make([]byte, 0, len(vals)*2)
	var prev int64
	if len(vals) > 0 {
		cb.Base = vals[0]
		prev = vals[0]
	}
	tmp := make([]byte, binary.MaxVarintLen64)
	for i, v := range vals {
		var delta int64
		if i == 0 {
			delta = v
		} else {
			delta = v - prev
		}
		prev = v
		n := binary.PutUvarint(tmp, zigzag(delta))
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func decompressInts(data []byte, count int) []int64 {
	out := make([]int64, 0, count)
	var cur int64
	first := true
	for i, n := 0, 0; i < len(data) && len(out) < count; i += n {
		u, sz := binary.Uvarint(data[i:])
		n = sz
		if n <= 0 {
			break
		}
		delta := unzigzag(u)
		if first {
			cur = delta
			first = false
		} else {
			cur += delta
		}
		out = append(out, cur)
	}
	return out
}

func compressFloatBits(bits []uint64) []byte {
	buf := make([]byte, 0, len(bits)*4)
	var prev uint64
	tmp := make([]byte, binary.MaxVarintLen64)
	for _, b := range bits {
		xor := b ^ prev
		prev = b
		n := binary.PutUvarint(tmp, xor)
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func decompressFloatBits(data []byte, count int) []uint64 {
	out := make([]uint64, 0, count)
	var cur uint64
	for i, n := 0, 0; i < len(data) && len(out) < count; i += n {
		u, sz := binary.Uvarint(data[i:])
		n = sz
		if n <= 0 {
			break
		}
		cur ^= u
		out = append(out, cur)
	}
	return out
}

func compressText(strs []string, cb *CodeBook) []byte {
	dictIdx := make(map[string]int)
	buf := make([]byte, 0, len(strs)*2)
	tmp := make([]byte, binary.MaxVarintLen64)
	for _, s := range strs {
		idx, ok := dictIdx[s]
		if !ok {
			idx = len(cb.Dictionary)
			cb.Dictionary = append(cb.Dictionary, s)
			dictIdx[s] = idx
		}
		n := binary.PutUvarint(tmp, uint64(idx))
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func decompressText(data []byte, cb *CodeBook) []string {
	out := make([]string, 0, cb.Count)
	for i, n := 0, 0; i < len(data) && len(out) < cb.Count; i += n {
		u, sz := binary.Uvarint(data[i:])
		n = sz
		if n <= 0 || int(u) >= len(cb.Dictionary) {
			break
		}
		out = append(out, cb.Dictionary[u])
	}
	return out
}
