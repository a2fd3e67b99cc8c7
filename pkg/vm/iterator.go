package vm

import (
	"fmt"
	"unsafe"
)

// IterationKind selects what a collection iterator yields per step.
// It is fixed at construction; the prototype next methods interpret it.
type IterationKind uint8

const (
	KindKeys IterationKind = iota
	KindValues
	KindEntries
)

func (k IterationKind) String() string {
	switch k {
	case KindKeys:
		return "keys"
	case KindValues:
		return "values"
	case KindEntries:
		return "entries"
	default:
		return fmt.Sprintf("IterationKind(%d)", uint8(k))
	}
}

// CreateIterResultObject builds a fresh {value, done} result object.
func (vm *VM) CreateIterResultObject(value Value, done bool) Value {
	result := NewObject(vm.ObjectPrototype)
	obj := result.AsPlainObject()
	obj.SetOwn("value", value)
	obj.SetOwn("done", BooleanValue(done))
	return result
}

// GetIterator resolves an iterator from an arbitrary value. When no
// pre-resolved method is supplied, the @@iterator property is looked
// up on obj; values without one are not iterable, and a supplied
// method must be callable. The method's return value must be an
// object and becomes the iterator.
func (vm *VM) GetIterator(obj Value, method ...Value) (Value, error) {
	var iterMethod Value
	if len(method) > 0 && method[0].Type() != TypeUndefined {
		iterMethod = method[0]
	} else {
		resolved, err := vm.GetMethodBySymbol(obj, vm.SymbolIterator)
		if err != nil {
			return Undefined, err
		}
		if resolved.Type() == TypeUndefined {
			return Undefined, vm.NewTypeError(fmt.Sprintf("%s is not iterable", obj.Inspect()))
		}
		iterMethod = resolved
	}
	if !iterMethod.IsCallable() {
		return Undefined, vm.NewTypeError(fmt.Sprintf("%s is not iterable", obj.Inspect()))
	}
	iterator, err := vm.Call(iterMethod, obj, nil)
	if err != nil {
		return Undefined, err
	}
	if !iterator.IsObject() {
		return Undefined, vm.NewTypeError("iterator result must be an object")
	}
	debugPrintf("// [Iterator] GetIterator: %s -> %s\n", obj.Inspect(), iterator.Inspect())
	return iterator, nil
}

// IteratorNext advances the iterator once by invoking its "next"
// method, passing value through when one is given (resumable
// iterators use it). The raw result object is returned uninterpreted.
func (vm *VM) IteratorNext(iterator Value, value ...Value) (Value, error) {
	nextMethod := vm.GetProperty(iterator, "next")
	if !nextMethod.IsCallable() {
		return Undefined, vm.NewTypeError("iterator.next is not a function")
	}
	var args []Value
	if len(value) > 0 {
		args = []Value{value[0]}
	}
	result, err := vm.Call(nextMethod, iterator, args)
	if err != nil {
		return Undefined, err
	}
	if !result.IsObject() {
		return Undefined, vm.NewTypeError("iterator result must be an object")
	}
	return result, nil
}

// IteratorComplete reads a result object's "done" property and coerces
// it by truthiness. The caller guarantees iterResult is an object.
func (vm *VM) IteratorComplete(iterResult Value) bool {
	return vm.GetProperty(iterResult, "done").IsTruthy()
}

// IteratorValue reads a result object's "value" property. The caller
// guarantees iterResult is an object.
func (vm *VM) IteratorValue(iterResult Value) Value {
	return vm.GetProperty(iterResult, "value")
}

// IteratorStep advances the iterator once and interprets the result.
// done reports exhaustion; when done is false, value carries the
// unwrapped step value.
func (vm *VM) IteratorStep(iterator Value) (value Value, done bool, err error) {
	result, err := vm.IteratorNext(iterator)
	if err != nil {
		return Undefined, false, err
	}
	if vm.IteratorComplete(result) {
		return Undefined, true, nil
	}
	return vm.IteratorValue(result), false, nil
}

// IteratorClose runs the protocol's cleanup step when a consumer exits
// iteration early. completion is the outcome the consumer was about to
// surface (nil for a normal exit); the return value is the outcome
// that actually should surface after cleanup. The precedence rules are
// walked in order as pure data comparisons:
//
//  1. A failure looking up "return" propagates immediately.
//  2. No "return" method: completion is returned unchanged.
//  3. An original throw always beats whatever cleanup did.
//  4. A throw during cleanup replaces a non-throw completion.
//  5. A cleanup result that is not an object is a TypeError.
//  6. Otherwise completion is returned unchanged.
func (vm *VM) IteratorClose(iterator Value, completion error) error {
	returnMethod, err := vm.GetMethod(iterator, "return")
	if err != nil {
		return err
	}
	if returnMethod.Type() == TypeUndefined {
		return completion
	}
	innerResult, innerErr := vm.Call(returnMethod, iterator, nil)
	if completion != nil && IsThrowCompletion(completion) {
		debugPrintf("// [Iterator] IteratorClose: original throw wins over cleanup\n")
		return completion
	}
	if innerErr != nil {
		return innerErr
	}
	if !innerResult.IsObject() {
		return vm.NewTypeError("iterator result must be an object")
	}
	return completion
}

// CreateListIterator adapts a fixed in-memory sequence to the iterator
// protocol. The cursor and the sequence live in the next method's
// closure, and the iterator's own identity is the forgery guard: the
// next method refuses any receiver that is not the exact iterator
// object it was created for, so copying the method onto a look-alike
// object gains nothing.
func (vm *VM) CreateListIterator(list []Value) Value {
	iterator := NewObject(vm.IteratorPrototype)
	index := 0
	next := NewNativeFunction(0, false, "next", func(args []Value) (Value, error) {
		if !vm.GetThis().SameValue(iterator) {
			return Undefined, vm.NewTypeError("next method called on incompatible receiver")
		}
		if index >= len(list) {
			return vm.CreateIterResultObject(Undefined, true), nil
		}
		value := list[index]
		index++
		return vm.CreateIterResultObject(value, false), nil
	})
	iterator.AsPlainObject().SetOwnNonEnumerable("next", next)
	return iterator
}

// MapIteratorObject carries the state of an in-flight Map iteration:
// the source map, the iteration kind, and a cursor into the map's slot
// list. The prototype next method drives it through NextEntry. A nil
// target marks permanent exhaustion.
type MapIteratorObject struct {
	Object
	target *MapObject
	kind   IterationKind
	index  int
}

// SetIteratorObject is the Set counterpart of MapIteratorObject.
type SetIteratorObject struct {
	Object
	target *SetObject
	kind   IterationKind
	index  int
}

// CreateMapIterator builds the iterator state for a Map source. The
// source must be a genuine Map value; anything else is a TypeError and
// nothing is allocated. No "next" method is installed here, the map
// iterator prototype provides it.
func (vm *VM) CreateMapIterator(target Value, kind IterationKind) (Value, error) {
	if target.Type() != TypeMap {
		return Undefined, vm.NewTypeError("CreateMapIterator called on non-Map object")
	}
	iter := &MapIteratorObject{target: target.AsMap(), kind: kind}
	return Value{typ: TypeMapIterator, obj: unsafe.Pointer(iter)}, nil
}

// CreateSetIterator builds the iterator state for a Set source under
// the same rules as CreateMapIterator.
func (vm *VM) CreateSetIterator(target Value, kind IterationKind) (Value, error) {
	if target.Type() != TypeSet {
		return Undefined, vm.NewTypeError("CreateSetIterator called on non-Set object")
	}
	iter := &SetIteratorObject{target: target.AsSet(), kind: kind}
	return Value{typ: TypeSetIterator, obj: unsafe.Pointer(iter)}, nil
}

// Kind returns the iteration kind fixed at construction.
func (it *MapIteratorObject) Kind() IterationKind {
	return it.kind
}

// Done reports whether the iterator has been exhausted and detached
// from its source.
func (it *MapIteratorObject) Done() bool {
	return it.target == nil
}

// NextEntry advances the cursor to the next live entry and returns it.
// Deleted slots are skipped. Walking off the end detaches the iterator
// from the map, so entries added afterwards are not observed and every
// later call keeps reporting exhaustion.
func (it *MapIteratorObject) NextEntry() (Value, Value, bool) {
	if it.target == nil {
		return Undefined, Undefined, false
	}
	for it.index < it.target.OrderLen() {
		key, value, ok := it.target.GetEntryAt(it.index)
		it.index++
		if ok {
			return key, value, true
		}
	}
	it.target = nil
	return Undefined, Undefined, false
}

// Kind returns the iteration kind fixed at construction.
func (it *SetIteratorObject) Kind() IterationKind {
	return it.kind
}

// Done reports whether the iterator has been exhausted and detached
// from its source.
func (it *SetIteratorObject) Done() bool {
	return it.target == nil
}

// NextValue advances the cursor to the next live value, skipping
// deleted slots and detaching on exhaustion like MapIteratorObject.
func (it *SetIteratorObject) NextValue() (Value, bool) {
	if it.target == nil {
		return Undefined, false
	}
	for it.index < it.target.OrderLen() {
		value, ok := it.target.GetValueAt(it.index)
		it.index++
		if ok {
			return value, true
		}
	}
	it.target = nil
	return Undefined, false
}

// IterableToList drains an iterable to natural exhaustion and returns
// the values in iteration order. No IteratorClose is needed on the
// happy path; an error during the drain propagates as-is because the
// failed step already left the iterator behind.
func (vm *VM) IterableToList(items Value, method ...Value) ([]Value, error) {
	iterator, err := vm.GetIterator(items, method...)
	if err != nil {
		return nil, err
	}
	var list []Value
	for {
		value, done, stepErr := vm.IteratorStep(iterator)
		if stepErr != nil {
			return nil, stepErr
		}
		if done {
			return list, nil
		}
		list = append(list, value)
	}
}
