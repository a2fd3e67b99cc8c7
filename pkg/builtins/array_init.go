package builtins

import (
	"strconv"

	"iterati/pkg/vm"
)

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	arrayProto := vmInstance.ArrayPrototype.AsPlainObject()

	// [Symbol.iterator] — a live closure iterator over the receiver array
	iterFn := vm.NewNativeFunction(0, false, "[Symbol.iterator]", func(args []vm.Value) (vm.Value, error) {
		thisVal := vmInstance.GetThis()
		if thisVal.Type() != vm.TypeArray {
			return vm.Undefined, vmInstance.NewTypeError("Array.prototype[Symbol.iterator] requires an array receiver")
		}
		return createArrayIterator(vmInstance, thisVal.AsArray(), vm.KindValues), nil
	})
	arrayProto.SetOwnByKeyNonEnumerable(vm.NewSymbolKey(vmInstance.SymbolIterator), iterFn)

	// Array.prototype.values() - same behavior as [Symbol.iterator]
	arrayProto.SetOwnNonEnumerable("values", vm.NewNativeFunction(0, false, "values", func(args []vm.Value) (vm.Value, error) {
		thisVal := vmInstance.GetThis()
		if thisVal.Type() != vm.TypeArray {
			return vm.Undefined, vmInstance.NewTypeError("Array.prototype.values requires an array receiver")
		}
		return createArrayIterator(vmInstance, thisVal.AsArray(), vm.KindValues), nil
	}))

	// Array.prototype.keys() - yields indices
	arrayProto.SetOwnNonEnumerable("keys", vm.NewNativeFunction(0, false, "keys", func(args []vm.Value) (vm.Value, error) {
		thisVal := vmInstance.GetThis()
		if thisVal.Type() != vm.TypeArray {
			return vm.Undefined, vmInstance.NewTypeError("Array.prototype.keys requires an array receiver")
		}
		return createArrayIterator(vmInstance, thisVal.AsArray(), vm.KindKeys), nil
	}))

	// Array.prototype.entries() - yields [index, value] pairs
	arrayProto.SetOwnNonEnumerable("entries", vm.NewNativeFunction(0, false, "entries", func(args []vm.Value) (vm.Value, error) {
		thisVal := vmInstance.GetThis()
		if thisVal.Type() != vm.TypeArray {
			return vm.Undefined, vmInstance.NewTypeError("Array.prototype.entries requires an array receiver")
		}
		return createArrayIterator(vmInstance, thisVal.AsArray(), vm.KindEntries), nil
	}))

	// Array constructor: Array() / Array(length) / Array(e0, e1, ...)
	arrayConstructor := vm.NewNativeFunctionWithProps(0, true, "Array", func(args []vm.Value) (vm.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			length := int(args[0].ToFloat())
			if length < 0 {
				return vm.Undefined, vmInstance.NewTypeError("invalid array length")
			}
			arr := vm.NewArray()
			if length > 0 {
				arr.AsArray().Set(length-1, vm.Undefined)
			}
			return arr, nil
		}
		return vm.NewArrayFromSlice(args), nil
	})
	props := arrayConstructor.AsNativeFunctionWithProps().Properties

	props.SetOwnNonEnumerable("isArray", vm.NewNativeFunction(1, false, "isArray", func(args []vm.Value) (vm.Value, error) {
		if len(args) < 1 {
			return vm.False, nil
		}
		return vm.BooleanValue(args[0].IsArray()), nil
	}))

	props.SetOwnNonEnumerable("of", vm.NewNativeFunction(0, true, "of", func(args []vm.Value) (vm.Value, error) {
		return vm.NewArrayFromSlice(args), nil
	}))

	// Array.from(source, mapFn?) — iterables drain through the protocol,
	// everything else falls back to array-like indexing
	props.SetOwnNonEnumerable("from", vm.NewNativeFunction(1, false, "from", func(args []vm.Value) (vm.Value, error) {
		if len(args) < 1 {
			return vm.Undefined, vmInstance.NewTypeError("undefined is not iterable")
		}
		source := args[0]

		mapFn := vm.Undefined
		if len(args) > 1 && args[1].Type() != vm.TypeUndefined {
			mapFn = args[1]
			if !mapFn.IsCallable() {
				return vm.Undefined, vmInstance.NewTypeError(mapFn.Inspect() + " is not a function")
			}
		}

		usingIterator, err := vmInstance.GetMethodBySymbol(source, vmInstance.SymbolIterator)
		if err != nil {
			return vm.Undefined, err
		}

		var values []vm.Value
		if usingIterator.Type() != vm.TypeUndefined {
			values, err = vmInstance.IterableToList(source, usingIterator)
			if err != nil {
				return vm.Undefined, err
			}
		} else {
			length := lengthOf(vmInstance, source)
			for i := 0; i < length; i++ {
				values = append(values, vmInstance.GetProperty(source, strconv.Itoa(i)))
			}
		}

		if mapFn.Type() == vm.TypeUndefined {
			return vm.NewArrayFromSlice(values), nil
		}
		mapped := make([]vm.Value, len(values))
		for i, v := range values {
			mv, err := vmInstance.Call(mapFn, vm.Undefined, []vm.Value{v, vm.IntegerValue(int32(i))})
			if err != nil {
				return vm.Undefined, err
			}
			mapped[i] = mv
		}
		return vm.NewArrayFromSlice(mapped), nil
	}))

	props.SetOwnNonEnumerable("prototype", vmInstance.ArrayPrototype)
	arrayProto.SetOwnNonEnumerable("constructor", arrayConstructor)

	return ctx.DefineGlobal("Array", arrayConstructor)
}

// lengthOf reads a length property and clamps it to a usable int.
func lengthOf(vmInstance *vm.VM, v vm.Value) int {
	lenVal := vmInstance.GetProperty(v, "length")
	if !lenVal.IsNumber() {
		return 0
	}
	length := int(lenVal.ToFloat())
	if length < 0 {
		return 0
	}
	return length
}

// createArrayIterator builds a closure iterator over the array. The length
// is re-read every step, so elements appended mid-iteration are visited.
func createArrayIterator(vmInstance *vm.VM, array *vm.ArrayObject, kind vm.IterationKind) vm.Value {
	iterator := vm.NewObject(vmInstance.IteratorPrototype).AsPlainObject()

	index := 0
	iterator.SetOwnNonEnumerable("next", vm.NewNativeFunction(0, false, "next", func(args []vm.Value) (vm.Value, error) {
		if index >= array.Length() {
			return vmInstance.CreateIterResultObject(vm.Undefined, true), nil
		}
		i := index
		index++
		switch kind {
		case vm.KindKeys:
			return vmInstance.CreateIterResultObject(vm.IntegerValue(int32(i)), false), nil
		case vm.KindEntries:
			pair := vm.NewArrayFromSlice([]vm.Value{vm.IntegerValue(int32(i)), array.Get(i)})
			return vmInstance.CreateIterResultObject(pair, false), nil
		default:
			return vmInstance.CreateIterResultObject(array.Get(i), false), nil
		}
	}))

	return vm.NewValueFromPlainObject(iterator)
}
