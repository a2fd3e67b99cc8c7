package vm

// ExceptionError is the contract for Go errors that carry a guest exception
// value. Builtins and protocol operations return these; hosts unwrap them to
// surface the thrown value.
type ExceptionError interface {
	error
	GetExceptionValue() Value
}

type exceptionError struct {
	exception Value
}

func (e exceptionError) Error() string {
	// Format Error-shaped objects the way uncaught-exception reporting does
	if e.exception.Type() == TypeObject {
		obj := e.exception.AsPlainObject()
		if nameVal, hasName := obj.GetOwn("name"); hasName {
			name := nameVal.ToString()
			if messageVal, hasMessage := obj.GetOwn("message"); hasMessage && messageVal.ToString() != "" {
				return name + ": " + messageVal.ToString()
			}
			return name
		}
	}
	return e.exception.ToString()
}

func (e exceptionError) GetExceptionValue() Value {
	return e.exception
}

// NewExceptionError wraps a guest exception value for return through Go error
// paths.
func (vm *VM) NewExceptionError(exception Value) error {
	return exceptionError{exception: exception}
}

// NewTypeError constructs a TypeError exception error for builtin helpers to return
func (vm *VM) NewTypeError(message string) error {
	ctor, ok := vm.GetGlobal("TypeError")
	if ok && ctor.Type() != TypeUndefined {
		errObj, err := vm.Call(ctor, Undefined, []Value{NewString(message)})
		if err == nil {
			return exceptionError{exception: errObj}
		}
	}
	// Fallback generic error object
	obj := NewObject(vm.TypeErrorPrototype).AsPlainObject()
	obj.SetOwn("name", NewString("TypeError"))
	obj.SetOwn("message", NewString(message))
	return exceptionError{exception: NewValueFromPlainObject(obj)}
}
