package builtins

import (
	"iterati/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Map", "Symbol", "Error")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime creates runtime values for the VM
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The VM instance
	VM *vm.VM

	// Define a global value
	DefineGlobal func(name string, value vm.Value) error
}

// Priority constants for initialization order
const (
	PrioritySymbol   = 0  // Symbol first (well-known keys for the iterator protocol)
	PriorityIterator = 1  // %IteratorPrototype% surface (needed by all iterables)
	PriorityError    = 2  // Error hierarchy (TypeError backs protocol failures)
	PriorityArray    = 10 // Array iteration surface
	PriorityString   = 11 // String primitives
	PriorityMap      = 20 // Map collection
	PrioritySet      = 21 // Set collection (after Map)
)
