package builtins

import (
	"testing"

	"iterati/pkg/vm"
)

func TestArrayConstructor(t *testing.T) {
	machine := newTestRuntime(t)
	arrayCtor, _ := machine.GetGlobal("Array")

	t.Run("NoArguments", func(t *testing.T) {
		arr, err := machine.Call(arrayCtor, vm.Undefined, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !arr.IsArray() || arr.AsArray().Length() != 0 {
			t.Errorf("expected an empty array, got %v", arr)
		}
	})

	t.Run("SingleNumericLength", func(t *testing.T) {
		arr, err := machine.Call(arrayCtor, vm.Undefined, []vm.Value{vm.IntegerValue(3)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if arr.AsArray().Length() != 3 {
			t.Errorf("expected length 3, got %d", arr.AsArray().Length())
		}
		if !arr.AsArray().Get(0).Is(vm.Undefined) {
			t.Errorf("expected undefined holes")
		}
	})

	t.Run("ElementList", func(t *testing.T) {
		arr, err := machine.Call(arrayCtor, vm.Undefined, []vm.Value{vm.NewString("a"), vm.NewString("b")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if arr.AsArray().Length() != 2 || arr.AsArray().Get(1).AsString() != "b" {
			t.Errorf("expected [a b], got %v", arr)
		}
	})
}

func TestArrayStatics(t *testing.T) {
	machine := newTestRuntime(t)
	arrayCtor, _ := machine.GetGlobal("Array")

	isArrayFn := machine.GetProperty(arrayCtor, "isArray")
	got, err := machine.Call(isArrayFn, vm.Undefined, []vm.Value{vm.NewArray()})
	if err != nil || !got.Is(vm.True) {
		t.Errorf("expected isArray(array) true, got %v (err=%v)", got, err)
	}
	got, _ = machine.Call(isArrayFn, vm.Undefined, []vm.Value{vm.NewMap()})
	if !got.Is(vm.False) {
		t.Errorf("expected isArray(map) false, got %v", got)
	}

	ofFn := machine.GetProperty(arrayCtor, "of")
	arr, err := machine.Call(ofFn, vm.Undefined, []vm.Value{vm.IntegerValue(7), vm.IntegerValue(8)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arr.AsArray().Length() != 2 || arr.AsArray().Get(0).AsInteger() != 7 {
		t.Errorf("expected [7 8], got %v", arr)
	}
}

func TestArrayFrom(t *testing.T) {
	machine := newTestRuntime(t)
	arrayCtor, _ := machine.GetGlobal("Array")
	fromFn := machine.GetProperty(arrayCtor, "from")

	t.Run("FromIterable", func(t *testing.T) {
		s := vm.NewSet()
		s.AsSet().Add(vm.IntegerValue(1))
		s.AsSet().Add(vm.IntegerValue(2))

		arr, err := machine.Call(fromFn, vm.Undefined, []vm.Value{s})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ao := arr.AsArray()
		if ao.Length() != 2 || ao.Get(0).AsInteger() != 1 || ao.Get(1).AsInteger() != 2 {
			t.Errorf("expected [1 2], got %v", arr)
		}
	})

	t.Run("FromArrayLike", func(t *testing.T) {
		arrayLike := vm.NewObject(machine.ObjectPrototype)
		obj := arrayLike.AsPlainObject()
		obj.SetOwn("length", vm.IntegerValue(2))
		obj.SetOwn("0", vm.NewString("x"))
		obj.SetOwn("1", vm.NewString("y"))

		arr, err := machine.Call(fromFn, vm.Undefined, []vm.Value{arrayLike})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ao := arr.AsArray()
		if ao.Length() != 2 || ao.Get(0).AsString() != "x" || ao.Get(1).AsString() != "y" {
			t.Errorf("expected [x y], got %v", arr)
		}
	})

	t.Run("MapFnReceivesValueAndIndex", func(t *testing.T) {
		source := vm.NewArrayFromSlice([]vm.Value{vm.IntegerValue(10), vm.IntegerValue(20)})
		mapFn := vm.NewNativeFunction(2, false, "mapFn", func(args []vm.Value) (vm.Value, error) {
			return vm.IntegerValue(args[0].AsInteger() + args[1].AsInteger()), nil
		})
		arr, err := machine.Call(fromFn, vm.Undefined, []vm.Value{source, mapFn})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ao := arr.AsArray()
		if ao.Get(0).AsInteger() != 10 || ao.Get(1).AsInteger() != 21 {
			t.Errorf("expected [10 21], got %v", arr)
		}
	})

	t.Run("NonCallableMapFn", func(t *testing.T) {
		source := vm.NewArray()
		_, err := machine.Call(fromFn, vm.Undefined, []vm.Value{source, vm.IntegerValue(1)})
		expectGuestTypeError(t, err, "is not a function")
	})

	t.Run("NoArguments", func(t *testing.T) {
		_, err := machine.Call(fromFn, vm.Undefined, nil)
		expectGuestTypeError(t, err, "is not iterable")
	})
}

func TestArrayIteration(t *testing.T) {
	machine := newTestRuntime(t)

	arr := vm.NewArrayFromSlice([]vm.Value{vm.NewString("a"), vm.NewString("b")})

	t.Run("ValuesThroughProtocol", func(t *testing.T) {
		values, err := machine.IterableToList(arr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 || values[0].AsString() != "a" || values[1].AsString() != "b" {
			t.Errorf("expected [a b], got %v", values)
		}
	})

	t.Run("LiveAppendDuringIteration", func(t *testing.T) {
		live := vm.NewArrayFromSlice([]vm.Value{vm.IntegerValue(1)})
		iterator, err := machine.GetIterator(live)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, done, err := machine.IteratorStep(iterator)
		if err != nil || done || value.AsInteger() != 1 {
			t.Fatalf("unexpected first step: %v (done=%v err=%v)", value, done, err)
		}
		// The iterator re-reads length, so the appended element is visited
		live.AsArray().Append(vm.IntegerValue(2))
		value, done, err = machine.IteratorStep(iterator)
		if err != nil || done || value.AsInteger() != 2 {
			t.Errorf("expected the appended element, got %v (done=%v err=%v)", value, done, err)
		}
		_, done, _ = machine.IteratorStep(iterator)
		if !done {
			t.Errorf("expected exhaustion after the appended element")
		}
	})

	t.Run("KeysKind", func(t *testing.T) {
		iter := callMethod(t, machine, arr, "keys")
		values, err := machine.IterableToList(iter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 || values[0].AsInteger() != 0 || values[1].AsInteger() != 1 {
			t.Errorf("expected [0 1], got %v", values)
		}
	})

	t.Run("EntriesKind", func(t *testing.T) {
		iter := callMethod(t, machine, arr, "entries")
		values, err := machine.IterableToList(iter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 {
			t.Fatalf("expected 2 pairs, got %d", len(values))
		}
		pair := values[1].AsArray()
		if pair.Get(0).AsInteger() != 1 || pair.Get(1).AsString() != "b" {
			t.Errorf("expected [1 b], got %v", values[1])
		}
	})

	t.Run("NonArrayReceiver", func(t *testing.T) {
		valuesFn := machine.GetProperty(arr, "values")
		_, err := machine.Call(valuesFn, vm.NewMap(), nil)
		expectGuestTypeError(t, err, "requires an array receiver")
	})
}
