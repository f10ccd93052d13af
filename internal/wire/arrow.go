package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/probing-go/probing/internal/columnar"
)

// EncodeArrowStream below is a minimal self-contained stream-format
// encoder — metadata version 5 framing, 8-byte aligned record batches —
// sufficient to round-trip our own columnar.DataFrame without depending
// on an Arrow implementation. It is not a general Arrow IPC writer, and
// the HTTP server does not call it: /query replies are always JSON,
// whatever the request's Accept header says.
const (
	arrowMetadataVersion = 5
	arrowAlignment       = 8
	arrowContinuation    = 0xFFFFFFFF
)

// EncodeArrowStream writes df as a sequence of 8-byte-aligned,
// length-prefixed frames: a schema frame followed by one record-batch
// frame. Each frame is [continuation(4)][length(4)][body][pad to 8].
func EncodeArrowStream(df *columnar.DataFrame) []byte {
	var out bytes.Buffer
	writeFrame(&out, encodeSchema(df))
	writeFrame(&out, encodeBatch(df))
	return out.Bytes()
}

func writeFrame(out *bytes.Buffer, body []byte) {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], arrowContinuation)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(body)))
	out.Write(hdr[:])
	out.Write(body)
	if pad := (arrowAlignment - len(body)%arrowAlignment) % arrowAlignment; pad > 0 {
		out.Write(make([]byte, pad))
	}
}

func encodeSchema(df *columnar.DataFrame) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, int32(arrowMetadataVersion))
	_ = binary.Write(&b, binary.LittleEndian, int32(len(df.Names)))
	for i, name := range df.Names {
		_ = binary.Write(&b, binary.LittleEndian, int32(len(name)))
		b.WriteString(name)
		_ = binary.Write(&b, binary.LittleEndian, int32(df.Cols[i].Tag()))
	}
	return b.Bytes()
}

func encodeBatch(df *columnar.DataFrame) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, int32(df.Size()))
	_ = binary.Write(&b, binary.LittleEndian, int32(len(df.Cols)))
	for _, col := range df.Cols {
		data, cb, _ := col.Compress(1)
		_ = binary.Write(&b, binary.LittleEndian, int32(cb.Count))
		_ = binary.Write(&b, binary.LittleEndian, int32(len(data)))
		b.Write(data)
	}
	return b.Bytes()
}
