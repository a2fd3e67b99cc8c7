package driver

import (
	"fmt"

	"iterati/pkg/builtins"
	"iterati/pkg/vm"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Session is a fully initialized runtime: a fresh VM with every
// standard builtin installed. Sessions are not safe for concurrent
// use; the fixture runner creates one per scenario instead of sharing.
type Session struct {
	vmInstance *vm.VM
}

// New creates a session and runs the standard initializers against it
// in priority order.
func New() (*Session, error) {
	machine := vm.NewVM()

	ctx := &builtins.RuntimeContext{
		VM: machine,
		DefineGlobal: func(name string, value vm.Value) error {
			machine.DefineGlobal(name, value)
			return nil
		},
	}

	for _, init := range builtins.GetStandardInitializers() {
		if err := init.InitRuntime(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize %s runtime: %v", init.Name(), err)
		}
	}

	return &Session{vmInstance: machine}, nil
}

// VM exposes the underlying machine for callers that drive the
// protocol operations directly.
func (s *Session) VM() *vm.VM {
	return s.vmInstance
}

// Global looks up a global binding installed by the initializers.
func (s *Session) Global(name string) (vm.Value, bool) {
	return s.vmInstance.GetGlobal(name)
}
