package builtins

import (
	"iterati/pkg/vm"
)

type SetInitializer struct{}

func (s *SetInitializer) Name() string {
	return "Set"
}

func (s *SetInitializer) Priority() int {
	return PrioritySet
}

func (s *SetInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	setProto := vmInstance.SetPrototype.AsPlainObject()

	// Set prototype methods
	setProto.SetOwnNonEnumerable("add", vm.NewNativeFunction(1, false, "add", func(args []vm.Value) (vm.Value, error) {
		thisSet := vmInstance.GetThis()
		if thisSet.Type() != vm.TypeSet {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.add called on incompatible receiver")
		}
		value := vm.Undefined
		if len(args) > 0 {
			value = args[0]
		}
		thisSet.AsSet().Add(value)
		return thisSet, nil // the set, for chaining
	}))

	setProto.SetOwnNonEnumerable("has", vm.NewNativeFunction(1, false, "has", func(args []vm.Value) (vm.Value, error) {
		thisSet := vmInstance.GetThis()
		if thisSet.Type() != vm.TypeSet {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.has called on incompatible receiver")
		}
		if len(args) < 1 {
			return vm.False, nil
		}
		return vm.BooleanValue(thisSet.AsSet().Has(args[0])), nil
	}))

	setProto.SetOwnNonEnumerable("delete", vm.NewNativeFunction(1, false, "delete", func(args []vm.Value) (vm.Value, error) {
		thisSet := vmInstance.GetThis()
		if thisSet.Type() != vm.TypeSet {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.delete called on incompatible receiver")
		}
		if len(args) < 1 {
			return vm.False, nil
		}
		return vm.BooleanValue(thisSet.AsSet().Delete(args[0])), nil
	}))

	setProto.SetOwnNonEnumerable("clear", vm.NewNativeFunction(0, false, "clear", func(args []vm.Value) (vm.Value, error) {
		thisSet := vmInstance.GetThis()
		if thisSet.Type() != vm.TypeSet {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.clear called on incompatible receiver")
		}
		thisSet.AsSet().Clear()
		return vm.Undefined, nil
	}))

	setProto.SetOwnNonEnumerable("forEach", vm.NewNativeFunction(1, false, "forEach", func(args []vm.Value) (vm.Value, error) {
		thisSet := vmInstance.GetThis()
		if thisSet.Type() != vm.TypeSet {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.forEach called on incompatible receiver")
		}
		if len(args) < 1 || !args[0].IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Set.prototype.forEach requires a callback function")
		}
		callback := args[0]
		thisArg := vm.Undefined
		if len(args) > 1 {
			thisArg = args[1]
		}
		iterVal, err := vmInstance.CreateSetIterator(thisSet, vm.KindValues)
		if err != nil {
			return vm.Undefined, err
		}
		it := iterVal.AsSetIterator()
		for {
			value, ok := it.NextValue()
			if !ok {
				return vm.Undefined, nil
			}
			// The callback sees the value in both slots, mirroring Map
			if _, err := vmInstance.Call(callback, thisArg, []vm.Value{value, value, thisSet}); err != nil {
				return vm.Undefined, err
			}
		}
	}))

	makeIterMethod := func(name string, kind vm.IterationKind) vm.Value {
		return vm.NewNativeFunction(0, false, name, func(args []vm.Value) (vm.Value, error) {
			return vmInstance.CreateSetIterator(vmInstance.GetThis(), kind)
		})
	}
	// keys is the same function object as values
	valuesFn := makeIterMethod("values", vm.KindValues)
	setProto.SetOwnNonEnumerable("values", valuesFn)
	setProto.SetOwnNonEnumerable("keys", valuesFn)
	setProto.SetOwnNonEnumerable("entries", makeIterMethod("entries", vm.KindEntries))
	setProto.SetOwnByKeyNonEnumerable(vm.NewSymbolKey(vmInstance.SymbolIterator), valuesFn)

	// %SetIteratorPrototype%.next
	setIterProto := vmInstance.SetIteratorPrototype.AsPlainObject()
	setIterProto.SetOwnNonEnumerable("next", vm.NewNativeFunction(0, false, "next", func(args []vm.Value) (vm.Value, error) {
		receiver := vmInstance.GetThis()
		if receiver.Type() != vm.TypeSetIterator {
			return vm.Undefined, vmInstance.NewTypeError("next method called on incompatible receiver")
		}
		it := receiver.AsSetIterator()
		value, ok := it.NextValue()
		if !ok {
			return vmInstance.CreateIterResultObject(vm.Undefined, true), nil
		}
		if it.Kind() == vm.KindEntries {
			pair := vm.NewArrayFromSlice([]vm.Value{value, value})
			return vmInstance.CreateIterResultObject(pair, false), nil
		}
		return vmInstance.CreateIterResultObject(value, false), nil
	}))

	// Set constructor: an optional iterable of values is drained through
	// the protocol.
	setConstructor := vm.NewNativeFunctionWithProps(0, true, "Set", func(args []vm.Value) (vm.Value, error) {
		setValue := vm.NewSet()
		if len(args) == 0 || args[0].Type() == vm.TypeUndefined || args[0].Type() == vm.TypeNull {
			return setValue, nil
		}
		setObj := setValue.AsSet()
		iterator, err := vmInstance.GetIterator(args[0])
		if err != nil {
			return vm.Undefined, err
		}
		for {
			value, done, err := vmInstance.IteratorStep(iterator)
			if err != nil {
				return vm.Undefined, err
			}
			if done {
				return setValue, nil
			}
			setObj.Add(value)
		}
	})
	setConstructor.AsNativeFunctionWithProps().Properties.SetOwnNonEnumerable("prototype", vmInstance.SetPrototype)
	setProto.SetOwnNonEnumerable("constructor", setConstructor)

	return ctx.DefineGlobal("Set", setConstructor)
}
