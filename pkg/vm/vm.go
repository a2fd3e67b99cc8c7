package vm

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

const debugVM = false

func debugPrintf(format string, args ...interface{}) {
	if debugVM {
		fmt.Printf(format, args...)
	}
}

// VM holds the realm state shared by every native call: the prototype
// chain roots, well-known symbols, globals, and the current 'this'
// binding for the native function being executed.
type VM struct {
	ObjectPrototype      Value
	FunctionPrototype    Value
	IteratorPrototype    Value
	ArrayPrototype       Value
	StringPrototype      Value
	ErrorPrototype       Value
	TypeErrorPrototype   Value
	MapPrototype         Value
	SetPrototype         Value
	MapIteratorPrototype Value
	SetIteratorPrototype Value

	// SymbolIterator is the realm's @@iterator well-known symbol.
	// Symbols compare by identity, so this exact value is what makes a
	// value iterable within this VM.
	SymbolIterator Value

	globals     map[string]Value
	currentThis Value
}

// NewVM creates a VM with its prototype chain and well-known symbols
// in place. Globals and prototype methods are populated separately by
// the builtins initializers.
func NewVM() *VM {
	machine := &VM{
		globals:     make(map[string]Value),
		currentThis: Undefined,
	}
	machine.initializePrototypes()
	machine.SymbolIterator = NewSymbol("Symbol.iterator")
	return machine
}

// initializePrototypes creates the bare prototype objects in
// dependency order. Object.prototype comes first because everything
// else inherits from it; the iterator prototypes hang off
// %IteratorPrototype% so a shared @@iterator can live there.
func (vm *VM) initializePrototypes() {
	vm.ObjectPrototype = NewObject(Null)
	vm.FunctionPrototype = NewObject(vm.ObjectPrototype)
	vm.IteratorPrototype = NewObject(vm.ObjectPrototype)
	vm.ArrayPrototype = NewObject(vm.ObjectPrototype)
	vm.StringPrototype = NewObject(vm.ObjectPrototype)
	vm.ErrorPrototype = NewObject(vm.ObjectPrototype)
	vm.TypeErrorPrototype = NewObject(vm.ErrorPrototype)
	vm.MapPrototype = NewObject(vm.ObjectPrototype)
	vm.SetPrototype = NewObject(vm.ObjectPrototype)
	vm.MapIteratorPrototype = NewObject(vm.IteratorPrototype)
	vm.SetIteratorPrototype = NewObject(vm.IteratorPrototype)
}

// DefineGlobal registers a global binding, replacing any previous one.
func (vm *VM) DefineGlobal(name string, value Value) {
	vm.globals[name] = value
}

// GetGlobal looks up a global binding.
func (vm *VM) GetGlobal(name string) (Value, bool) {
	value, ok := vm.globals[name]
	return value, ok
}

// GetThis returns the 'this' binding of the native call currently in
// flight. Native functions reach for this instead of taking a receiver
// parameter.
func (vm *VM) GetThis() Value {
	return vm.currentThis
}

// Call is the unified calling interface for native functions. The
// 'this' binding is saved and restored around the call so nested calls
// observe their own receiver.
func (vm *VM) Call(fn Value, thisValue Value, args []Value) (Value, error) {
	switch fn.Type() {
	case TypeNativeFunction:
		native := AsNativeFunction(fn)
		prevThis := vm.currentThis
		vm.currentThis = thisValue
		defer func() { vm.currentThis = prevThis }()
		return native.Fn(args)

	case TypeNativeFunctionWithProps:
		native := fn.AsNativeFunctionWithProps()
		prevThis := vm.currentThis
		vm.currentThis = thisValue
		defer func() { vm.currentThis = prevThis }()
		return native.Fn(args)

	default:
		return Undefined, fmt.Errorf("cannot call non-function value of type %v", fn.Type())
	}
}

// GetProperty resolves a named property on any value, consulting the
// value's own storage first and then the prototype chain. Missing
// properties yield Undefined; lookups never throw because plain data
// properties are the only kind this object model has.
func (vm *VM) GetProperty(v Value, name string) Value {
	switch v.Type() {
	case TypeObject:
		return vm.lookupOnChain(v, name)

	case TypeArray:
		arr := v.AsArray()
		if name == "length" {
			return IntegerValue(int32(arr.Length()))
		}
		if idx, err := strconv.Atoi(name); err == nil && idx >= 0 {
			return arr.Get(idx)
		}

	case TypeString:
		if name == "length" {
			return IntegerValue(int32(utf8.RuneCountInString(v.AsString())))
		}

	case TypeMap:
		if name == "size" {
			return IntegerValue(int32(v.AsMap().Size()))
		}

	case TypeSet:
		if name == "size" {
			return IntegerValue(int32(v.AsSet().Size()))
		}

	case TypeNativeFunction:
		native := v.AsNativeFunction()
		switch name {
		case "name":
			return NewString(native.Name)
		case "length":
			return IntegerValue(int32(native.Arity))
		}

	case TypeNativeFunctionWithProps:
		native := v.AsNativeFunctionWithProps()
		if value, ok := native.Properties.GetOwn(name); ok {
			return value
		}
		switch name {
		case "name":
			return NewString(native.Name)
		case "length":
			return IntegerValue(int32(native.Arity))
		}
	}
	return vm.lookupOnChain(vm.prototypeFor(v), name)
}

// GetSymbolProperty resolves a symbol-keyed property along the
// prototype chain. The boolean reports whether the property exists at
// all, which callers use to distinguish "absent" from "present but
// undefined".
func (vm *VM) GetSymbolProperty(v Value, sym Value) (Value, bool) {
	key := NewSymbolKey(sym)
	switch v.Type() {
	case TypeObject:
		return vm.lookupSymbolOnChain(v, key)

	case TypeNativeFunctionWithProps:
		if value, ok := v.AsNativeFunctionWithProps().Properties.GetOwnByKey(key); ok {
			return value, true
		}
	}
	return vm.lookupSymbolOnChain(vm.prototypeFor(v), key)
}

// GetMethod fetches a named property and vets it as a method:
// undefined and null mean "no method", anything else must be callable.
func (vm *VM) GetMethod(v Value, name string) (Value, error) {
	method := vm.GetProperty(v, name)
	if method.Type() == TypeUndefined || method.Type() == TypeNull {
		return Undefined, nil
	}
	if !method.IsCallable() {
		return Undefined, vm.NewTypeError(fmt.Sprintf("%s is not a function", name))
	}
	return method, nil
}

// GetMethodBySymbol is GetMethod for symbol-keyed properties.
func (vm *VM) GetMethodBySymbol(v Value, sym Value) (Value, error) {
	method, found := vm.GetSymbolProperty(v, sym)
	if !found || method.Type() == TypeUndefined || method.Type() == TypeNull {
		return Undefined, nil
	}
	if !method.IsCallable() {
		return Undefined, vm.NewTypeError(fmt.Sprintf("%s is not a function", sym.ToString()))
	}
	return method, nil
}

// Invoke looks up a named method on receiver and calls it with
// receiver as 'this'. Sugar over GetMethod plus Call; a missing or
// non-callable property is a TypeError.
func (vm *VM) Invoke(receiver Value, name string, args []Value) (Value, error) {
	method, err := vm.GetMethod(receiver, name)
	if err != nil {
		return Undefined, err
	}
	if method.Type() == TypeUndefined {
		return Undefined, vm.NewTypeError(fmt.Sprintf("%s is not a function", name))
	}
	return vm.Call(method, receiver, args)
}

// prototypeFor maps a value to the realm prototype its property
// lookups fall back to. Plain objects carry their own prototype
// pointer and never reach this.
func (vm *VM) prototypeFor(v Value) Value {
	switch v.Type() {
	case TypeArray:
		return vm.ArrayPrototype
	case TypeString:
		return vm.StringPrototype
	case TypeMap:
		return vm.MapPrototype
	case TypeSet:
		return vm.SetPrototype
	case TypeMapIterator:
		return vm.MapIteratorPrototype
	case TypeSetIterator:
		return vm.SetIteratorPrototype
	case TypeNativeFunction, TypeNativeFunctionWithProps:
		return vm.FunctionPrototype
	default:
		return Undefined
	}
}

func (vm *VM) lookupOnChain(start Value, name string) Value {
	cur := start
	for cur.Type() == TypeObject {
		po := cur.AsPlainObject()
		if value, ok := po.GetOwn(name); ok {
			return value
		}
		cur = po.GetPrototype()
	}
	return Undefined
}

func (vm *VM) lookupSymbolOnChain(start Value, key PropertyKey) (Value, bool) {
	cur := start
	for cur.Type() == TypeObject {
		po := cur.AsPlainObject()
		if value, ok := po.GetOwnByKey(key); ok {
			return value, true
		}
		cur = po.GetPrototype()
	}
	return Undefined, false
}
