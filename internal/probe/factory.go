package probe

// Factory creates one Probe per connection, so per-connection state
// (buffered eval output, per-connection sampler toggles) never leaks
// across connections, per spec.md §4.F.
type Factory struct {
	// NewScript, if set, constructs the ScriptRuntime each new probe
	// should use. Nil means probes run without a scripting collaborator
	// (Eval/scripted-frame collection then fail/no-op).
	NewScript func() ScriptRuntime
}

// NewFactory returns a Factory. newScript may be nil.
func NewFactory(newScript func() ScriptRuntime) *Factory {
	return &Factory{NewScript: newScript}
}

// New returns a fresh Probe bound to connID (connID is accepted for
// logging/diagnostics symmetry with spec.md's "factory.New(connID)";
// this implementation doesn't key state by it since each call already
// returns an isolated instance).
func (f *Factory) New(connID string) Probe {
	var script ScriptRuntime
	if f.NewScript != nil {
		script = f.NewScript()
	}
	return newProbe(script)
}
