package probe

import (
	"fmt"

	"github.com/probing-go/probing/internal/wire"
	"github.com/robertkrimen/otto"
)

// OttoRuntime is a pure-Go ScriptRuntime backed by robertkrimen/otto,
// standing in for the embedded host interpreter spec.md leaves as an
// external collaborator. It gives Eval/backtrace something real to
// execute in tests and pure-Go deployments; a production build may
// substitute a CPython-FFI implementation behind the same interface.
type OttoRuntime struct {
	vm *otto.Otto
}

// NewOttoRuntime returns a ScriptRuntime with a fresh otto VM.
func NewOttoRuntime() *OttoRuntime {
	return &OttoRuntime{vm: otto.New()}
}

func (r *OttoRuntime) Eval(code string) (string, error) {
	value, err := r.vm.Run(code)
	if err != nil {
		return "", fmt.Errorf("probe: otto eval: %w", err)
	}
	return value.String(), nil
}

// Stacks has no meaningful call-stack introspection in otto's
// interpreter loop (it runs to completion synchronously, so there is
// never a suspended script stack to sample from outside); it always
// returns an empty slice.
func (r *OttoRuntime) Stacks(tid *int64) ([]wire.CallFrame, error) {
	return nil, nil
}
