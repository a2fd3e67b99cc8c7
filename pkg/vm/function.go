package vm

import (
	"unsafe"
)

// NativeFunctionObject represents a native Go function callable from guest
// code paths. The receiver is not an argument: natives read it through
// vm.GetThis(), and vm.Call maintains it around each invocation.
type NativeFunctionObject struct {
	Object
	Arity    int
	Variadic bool
	Name     string
	Fn       func(args []Value) (Value, error)
}

// NativeFunctionObjectWithProps is a native function that also carries own
// properties, e.g. a constructor exposing .prototype and statics.
type NativeFunctionObjectWithProps struct {
	NativeFunctionObject
	Properties *PlainObject
}

func NewNativeFunction(arity int, variadic bool, name string, fn func(args []Value) (Value, error)) Value {
	return Value{typ: TypeNativeFunction, obj: unsafe.Pointer(&NativeFunctionObject{
		Arity:    arity,
		Variadic: variadic,
		Name:     name,
		Fn:       fn,
	})}
}

func NewNativeFunctionWithProps(arity int, variadic bool, name string, fn func(args []Value) (Value, error)) Value {
	obj := &NativeFunctionObjectWithProps{
		NativeFunctionObject: NativeFunctionObject{
			Arity:    arity,
			Variadic: variadic,
			Name:     name,
			Fn:       fn,
		},
		Properties: NewObject(Null).AsPlainObject(),
	}
	return Value{typ: TypeNativeFunctionWithProps, obj: unsafe.Pointer(obj)}
}
