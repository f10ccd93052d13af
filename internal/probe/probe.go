// Package probe implements the per-connection diagnostic façade:
// backtrace, eval, enable/disable collectors, and flamegraph rendering,
// dispatched from a decoded wire.ProbeCall.
package probe

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/probing-go/probing/internal/wire"
)

// Feature names a collector enable/disable targets.
type Feature string

const (
	FeatureSampler      Feature = "sampler"
	FeatureRemoteServer Feature = "remote_server"
	FeatureCrashCatcher Feature = "crash_catcher"
	FeatureStackTracer  Feature = "stack_tracer"
)

var knownFeatures = map[Feature]bool{
	FeatureSampler:      true,
	FeatureRemoteServer: true,
	FeatureCrashCatcher: true,
	FeatureStackTracer:  true,
}

// ErrUnknownFeature is returned by Enable/Disable for an unrecognized
// feature name.
var ErrUnknownFeature = errors.New("probe: unknown feature")

// ErrSamplerNotEnabled is returned by Flamegraph when the sampler has
// never been enabled on this probe.
var ErrSamplerNotEnabled = errors.New("probe: sampler was never enabled")

// ScriptRuntime is the narrow seam onto the external scripting
// collaborator (spec.md's embedded interpreter): Eval runs code and
// returns its text representation, Stacks returns script-language call
// frames for a thread (nil tid means the calling "thread" in the
// scripting runtime's own sense).
type ScriptRuntime interface {
	Eval(code string) (string, error)
	Stacks(tid *int64) ([]wire.CallFrame, error)
}

// Probe is the per-connection diagnostic façade.
type Probe interface {
	Backtrace(depth *int, tid *int64) ([]wire.CallFrame, error)
	Eval(code string) (string, error)
	Enable(feature Feature) error
	Disable(feature Feature) error
	Flamegraph() (string, error)
	// Handle decodes call, dispatches, and returns the encoded reply —
	// never an error itself: failures are carried inside the reply.
	Handle(call wire.ProbeCall) wire.ProbeReply
}

type probe struct {
	mu      sync.Mutex
	script  ScriptRuntime
	sampler *Sampler

	samplerEnabled bool
	enabledOther   map[Feature]bool
}

// newProbe constructs one connection-scoped probe instance.
func newProbe(script ScriptRuntime) *probe {
	return &probe{script: script, enabledOther: make(map[Feature]bool)}
}

func (p *probe) Backtrace(depth *int, tid *int64) ([]wire.CallFrame, error) {
	native := nativeBacktrace(depth)
	var frames []wire.CallFrame
	frames = append(frames, native...)

	if p.script != nil {
		scripted, err := p.script.Stacks(tid)
		if err != nil {
			return nil, fmt.Errorf("probe: script stacks: %w", err)
		}
		frames = append(frames, scripted...)
	}
	return frames, nil
}

func nativeBacktrace(depth *int) []wire.CallFrame {
	max := 64
	if depth != nil && *depth > 0 && *depth < max {
		max = *depth
	}
	pcs := make([]uintptr, max)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []wire.CallFrame
	for {
		f, more := frames.Next()
		out = append(out, wire.CallFrame{
			Kind:   wire.FrameNative,
			IP:     uint64(f.PC),
			File:   f.File,
			Func:   f.Function,
			Lineno: f.Line,
		})
		if !more {
			break
		}
	}
	return out
}

func (p *probe) Eval(code string) (string, error) {
	if p.script == nil {
		return "", errors.New("probe: no scripting runtime configured")
	}
	return p.script.Eval(code)
}

func (p *probe) Enable(feature Feature) error {
	if !knownFeatures[feature] {
		return ErrUnknownFeature
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if feature == FeatureSampler {
		if p.sampler == nil {
			p.sampler = NewSampler(defaultSampleInterval)
		}
		p.sampler.Start()
		p.samplerEnabled = true
		return nil
	}
	p.enabledOther[feature] = true
	return nil
}

func (p *probe) Disable(feature Feature) error {
	if !knownFeatures[feature] {
		return ErrUnknownFeature
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if feature == FeatureSampler {
		if p.sampler != nil {
			p.sampler.Stop()
		}
		return nil
	}
	delete(p.enabledOther, feature)
	return nil
}

func (p *probe) Flamegraph() (string, error) {
	p.mu.Lock()
	enabled := p.samplerEnabled
	sampler := p.sampler
	p.mu.Unlock()
	if !enabled || sampler == nil {
		return "", ErrSamplerNotEnabled
	}
	return sampler.Flamegraph(), nil
}

// Handle decodes and dispatches call, never returning a transport-level
// error: failures are encoded as wire.ReturnErr per spec.md §7's "a
// failed probe call returns an Err variant inside a 200".
func (p *probe) Handle(call wire.ProbeCall) wire.ProbeReply {
	switch call.Kind {
	case wire.CallBacktrace:
		frames, err := p.Backtrace(call.Depth, call.Tid)
		if err != nil {
			return errReply(err)
		}
		return wire.ProbeReply{Kind: wire.ReturnBacktrace, Frames: frames}
	case wire.CallEval:
		text, err := p.Eval(call.Code)
		if err != nil {
			return errReply(err)
		}
		return wire.ProbeReply{Kind: wire.ReturnEval, Text: text}
	case wire.CallEnable:
		if err := p.Enable(Feature(call.Feature)); err != nil {
			return errReply(err)
		}
		return wire.ProbeReply{Kind: wire.ReturnEnable}
	case wire.CallDisable:
		if err := p.Disable(Feature(call.Feature)); err != nil {
			return errReply(err)
		}
		return wire.ProbeReply{Kind: wire.ReturnDisable}
	case wire.CallFlamegraph:
		svg, err := p.Flamegraph()
		if err != nil {
			return errReply(err)
		}
		return wire.ProbeReply{Kind: wire.ReturnFlamegraph, SVG: svg}
	default:
		return errReply(fmt.Errorf("probe: unknown call kind %q", call.Kind))
	}
}

func errReply(err error) wire.ProbeReply {
	return wire.ProbeReply{Kind: wire.ReturnErr, Err: err.Error()}
}
