package builtins

import (
	"iterati/pkg/vm"
)

type MapInitializer struct{}

func (m *MapInitializer) Name() string {
	return "Map"
}

func (m *MapInitializer) Priority() int {
	return PriorityMap
}

func (m *MapInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	mapProto := vmInstance.MapPrototype.AsPlainObject()

	// Map prototype methods
	mapProto.SetOwnNonEnumerable("set", vm.NewNativeFunction(2, false, "set", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.set called on incompatible receiver")
		}
		key, value := vm.Undefined, vm.Undefined
		if len(args) > 0 {
			key = args[0]
		}
		if len(args) > 1 {
			value = args[1]
		}
		thisMap.AsMap().Set(key, value)
		return thisMap, nil // the map, for chaining
	}))

	mapProto.SetOwnNonEnumerable("get", vm.NewNativeFunction(1, false, "get", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.get called on incompatible receiver")
		}
		if len(args) < 1 {
			return vm.Undefined, nil
		}
		return thisMap.AsMap().Get(args[0]), nil
	}))

	mapProto.SetOwnNonEnumerable("has", vm.NewNativeFunction(1, false, "has", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.has called on incompatible receiver")
		}
		if len(args) < 1 {
			return vm.False, nil
		}
		return vm.BooleanValue(thisMap.AsMap().Has(args[0])), nil
	}))

	mapProto.SetOwnNonEnumerable("delete", vm.NewNativeFunction(1, false, "delete", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.delete called on incompatible receiver")
		}
		if len(args) < 1 {
			return vm.False, nil
		}
		return vm.BooleanValue(thisMap.AsMap().Delete(args[0])), nil
	}))

	mapProto.SetOwnNonEnumerable("clear", vm.NewNativeFunction(0, false, "clear", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.clear called on incompatible receiver")
		}
		thisMap.AsMap().Clear()
		return vm.Undefined, nil
	}))

	mapProto.SetOwnNonEnumerable("forEach", vm.NewNativeFunction(1, false, "forEach", func(args []vm.Value) (vm.Value, error) {
		thisMap := vmInstance.GetThis()
		if thisMap.Type() != vm.TypeMap {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.forEach called on incompatible receiver")
		}
		if len(args) < 1 || !args[0].IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Map.prototype.forEach requires a callback function")
		}
		callback := args[0]
		thisArg := vm.Undefined
		if len(args) > 1 {
			thisArg = args[1]
		}
		// A live cursor: entries added during the walk are visited, deleted
		// ones are skipped.
		iterVal, err := vmInstance.CreateMapIterator(thisMap, vm.KindEntries)
		if err != nil {
			return vm.Undefined, err
		}
		it := iterVal.AsMapIterator()
		for {
			key, value, ok := it.NextEntry()
			if !ok {
				return vm.Undefined, nil
			}
			if _, err := vmInstance.Call(callback, thisArg, []vm.Value{value, key, thisMap}); err != nil {
				return vm.Undefined, err
			}
		}
	}))

	// keys/values/entries construct typed iterator state; the next method
	// lives on %MapIteratorPrototype%
	makeIterMethod := func(name string, kind vm.IterationKind) vm.Value {
		return vm.NewNativeFunction(0, false, name, func(args []vm.Value) (vm.Value, error) {
			return vmInstance.CreateMapIterator(vmInstance.GetThis(), kind)
		})
	}
	mapProto.SetOwnNonEnumerable("keys", makeIterMethod("keys", vm.KindKeys))
	mapProto.SetOwnNonEnumerable("values", makeIterMethod("values", vm.KindValues))
	entriesFn := makeIterMethod("entries", vm.KindEntries)
	mapProto.SetOwnNonEnumerable("entries", entriesFn)
	mapProto.SetOwnByKeyNonEnumerable(vm.NewSymbolKey(vmInstance.SymbolIterator), entriesFn)

	// %MapIteratorPrototype%.next — drives the typed iterator state. Only a
	// genuine map iterator may be the receiver; shape look-alikes are refused.
	mapIterProto := vmInstance.MapIteratorPrototype.AsPlainObject()
	mapIterProto.SetOwnNonEnumerable("next", vm.NewNativeFunction(0, false, "next", func(args []vm.Value) (vm.Value, error) {
		receiver := vmInstance.GetThis()
		if receiver.Type() != vm.TypeMapIterator {
			return vm.Undefined, vmInstance.NewTypeError("next method called on incompatible receiver")
		}
		it := receiver.AsMapIterator()
		key, value, ok := it.NextEntry()
		if !ok {
			return vmInstance.CreateIterResultObject(vm.Undefined, true), nil
		}
		switch it.Kind() {
		case vm.KindKeys:
			return vmInstance.CreateIterResultObject(key, false), nil
		case vm.KindValues:
			return vmInstance.CreateIterResultObject(value, false), nil
		default:
			pair := vm.NewArrayFromSlice([]vm.Value{key, value})
			return vmInstance.CreateIterResultObject(pair, false), nil
		}
	}))

	// Map constructor: an optional iterable of [key, value] entries is
	// drained through the protocol; a malformed entry closes the source
	// iterator before the TypeError surfaces.
	mapConstructor := vm.NewNativeFunctionWithProps(0, true, "Map", func(args []vm.Value) (vm.Value, error) {
		mapValue := vm.NewMap()
		if len(args) == 0 || args[0].Type() == vm.TypeUndefined || args[0].Type() == vm.TypeNull {
			return mapValue, nil
		}
		mapObj := mapValue.AsMap()
		iterator, err := vmInstance.GetIterator(args[0])
		if err != nil {
			return vm.Undefined, err
		}
		for {
			entry, done, err := vmInstance.IteratorStep(iterator)
			if err != nil {
				return vm.Undefined, err
			}
			if done {
				return mapValue, nil
			}
			if !entry.IsObject() {
				entryErr := vmInstance.NewTypeError("iterator value " + entry.Inspect() + " is not an entry object")
				return vm.Undefined, vmInstance.IteratorClose(iterator, entryErr)
			}
			key := vmInstance.GetProperty(entry, "0")
			value := vmInstance.GetProperty(entry, "1")
			mapObj.Set(key, value)
		}
	})
	mapConstructor.AsNativeFunctionWithProps().Properties.SetOwnNonEnumerable("prototype", vmInstance.MapPrototype)
	mapProto.SetOwnNonEnumerable("constructor", mapConstructor)

	return ctx.DefineGlobal("Map", mapConstructor)
}
