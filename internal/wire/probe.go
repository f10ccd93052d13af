package wire

import "github.com/probing-go/probing/internal/columnar"

// ProbeCallKind discriminates the probe request union.
type ProbeCallKind string

const (
	CallBacktrace  ProbeCallKind = "backtrace"
	CallEval       ProbeCallKind = "eval"
	CallEnable     ProbeCallKind = "enable"
	CallDisable    ProbeCallKind = "disable"
	CallFlamegraph ProbeCallKind = "flamegraph"
)

// ProbeCall is the JSON-encoded probe request body.
type ProbeCall struct {
	Kind    ProbeCallKind `json:"kind"`
	Depth   *int          `json:"depth,omitempty"`   // CallBacktrace
	Tid     *int64        `json:"tid,omitempty"`     // CallBacktrace
	Code    string        `json:"code,omitempty"`    // CallEval
	Feature string        `json:"feature,omitempty"` // CallEnable/CallDisable
}

// ProbeReplyKind discriminates the probe reply union.
type ProbeReplyKind string

const (
	ReturnBacktrace  ProbeReplyKind = "backtrace"
	ReturnEval       ProbeReplyKind = "eval"
	ReturnEnable     ProbeReplyKind = "enable"
	ReturnDisable    ProbeReplyKind = "disable"
	ReturnFlamegraph ProbeReplyKind = "flamegraph"
	ReturnErr        ProbeReplyKind = "error"
)

// FrameKind discriminates a CallFrame's native/scripted origin.
type FrameKind string

const (
	FrameNative   FrameKind = "native"
	FrameScripted FrameKind = "scripted"
)

// CallFrame is one stack frame in a backtrace reply.
type CallFrame struct {
	Kind   FrameKind      `json:"kind"`
	IP     uint64         `json:"ip,omitempty"`
	File   string         `json:"file"`
	Func   string         `json:"func"`
	Lineno int            `json:"lineno"`
	Locals map[string]any `json:"locals,omitempty"`
}

// EleToAny renders an Ele for the Locals map of a scripted frame.
func EleToAny(e columnar.Ele) any { return eleToJSON(e) }

// ProbeReply is the JSON-encoded probe response body.
type ProbeReply struct {
	Kind   ProbeReplyKind `json:"kind"`
	Frames []CallFrame    `json:"frames,omitempty"` // ReturnBacktrace
	Text   string         `json:"text,omitempty"`   // ReturnEval
	SVG    string         `json:"svg,omitempty"`    // ReturnFlamegraph
	Err    string         `json:"error,omitempty"`  // ReturnErr
}
