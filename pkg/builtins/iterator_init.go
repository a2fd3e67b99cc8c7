package builtins

import (
	"iterati/pkg/vm"
)

// IteratorInitializer installs the shared %IteratorPrototype% surface. Its
// only member is [Symbol.iterator] returning this, which makes every
// iterator in the runtime itself iterable, so consumers can hand an
// iterator to anything that expects an iterable.
type IteratorInitializer struct{}

func (i *IteratorInitializer) Name() string {
	return "Iterator"
}

func (i *IteratorInitializer) Priority() int {
	return PriorityIterator
}

func (i *IteratorInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	iterProto := vmInstance.IteratorPrototype.AsPlainObject()

	selfFn := vm.NewNativeFunction(0, false, "[Symbol.iterator]", func(args []vm.Value) (vm.Value, error) {
		return vmInstance.GetThis(), nil
	})
	iterProto.SetOwnByKeyNonEnumerable(vm.NewSymbolKey(vmInstance.SymbolIterator), selfFn)

	return nil
}
