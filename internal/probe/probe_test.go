package probe

import (
	"testing"

	"github.com/probing-go/probing/internal/wire"
	"github.com/stretchr/testify/require"
)

type fakeScript struct{}

func (fakeScript) Eval(code string) (string, error) { return "42", nil }
func (fakeScript) Stacks(tid *int64) ([]wire.CallFrame, error) {
	return []wire.CallFrame{{Kind: wire.FrameScripted, File: "a.py", Func: "f", Lineno: 3}}, nil
}

func TestFactoryNewIsolatesConnections(t *testing.T) {
	f := NewFactory(func() ScriptRuntime { return fakeScript{} })
	p1 := f.New("conn-1")
	p2 := f.New("conn-2")

	require.NoError(t, p1.Enable(FeatureSampler))
	require.Error(t, must(p2.Flamegraph()))
}

func must(_ string, err error) error { return err }

func TestProbeHandleEval(t *testing.T) {
	p := newProbe(fakeScript{})
	reply := p.Handle(wire.ProbeCall{Kind: wire.CallEval, Code: "6*7"})
	require.Equal(t, wire.ReturnEval, reply.Kind)
	require.Equal(t, "42", reply.Text)
}

func TestProbeHandleBacktraceIncludesScriptedFrames(t *testing.T) {
	p := newProbe(fakeScript{})
	reply := p.Handle(wire.ProbeCall{Kind: wire.CallBacktrace})
	require.Equal(t, wire.ReturnBacktrace, reply.Kind)

	found := false
	for _, f := range reply.Frames {
		if f.Kind == wire.FrameScripted {
			found = true
		}
	}
	require.True(t, found)
}

func TestProbeFlamegraphFailsWithoutSampler(t *testing.T) {
	p := newProbe(nil)
	reply := p.Handle(wire.ProbeCall{Kind: wire.CallFlamegraph})
	require.Equal(t, wire.ReturnErr, reply.Kind)
}

func TestProbeEnableUnknownFeature(t *testing.T) {
	p := newProbe(nil)
	err := p.Enable(Feature("bogus"))
	require.ErrorIs(t, err, ErrUnknownFeature)
}

func TestSamplerRendersSVG(t *testing.T) {
	s := NewSampler(1)
	s.Start()
	s.Stop()
	svg := s.Flamegraph()
	require.Contains(t, svg, "<svg")
}
