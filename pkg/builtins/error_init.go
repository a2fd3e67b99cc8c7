package builtins

import (
	"iterati/pkg/vm"
)

// ErrorInitializer populates Error.prototype and registers the Error and
// TypeError constructors. Once this has run, vm.NewTypeError routes through
// the TypeError global instead of its fallback object.
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	// The VM creates the prototype objects; the initializer fills them in.
	errorPrototype := vmInstance.ErrorPrototype.AsPlainObject()
	errorPrototype.SetOwnNonEnumerable("name", vm.NewString("Error"))
	errorPrototype.SetOwnNonEnumerable("message", vm.NewString(""))

	// Error.prototype.toString()
	errorPrototype.SetOwnNonEnumerable("toString", vm.NewNativeFunction(0, false, "toString", func(args []vm.Value) (vm.Value, error) {
		thisValue := vmInstance.GetThis()

		name := "Error"
		message := ""
		if thisValue.IsObject() {
			if nameValue := vmInstance.GetProperty(thisValue, "name"); nameValue.IsString() {
				name = nameValue.AsString()
			}
			if messageValue := vmInstance.GetProperty(thisValue, "message"); messageValue.IsString() {
				message = messageValue.AsString()
			}
		}

		// "name: message" format, or just "name" if no message
		if message == "" {
			return vm.NewString(name), nil
		}
		return vm.NewString(name + ": " + message), nil
	}))

	errorConstructor := vm.NewNativeFunctionWithProps(1, true, "Error", func(args []vm.Value) (vm.Value, error) {
		return newErrorInstance(vmInstance.ErrorPrototype, "Error", args), nil
	})
	errorConstructor.AsNativeFunctionWithProps().Properties.SetOwnNonEnumerable("prototype", vmInstance.ErrorPrototype)
	errorPrototype.SetOwnNonEnumerable("constructor", errorConstructor)

	if err := ctx.DefineGlobal("Error", errorConstructor); err != nil {
		return err
	}

	return initErrorSubclass(ctx, "TypeError", vmInstance.TypeErrorPrototype)
}

// initErrorSubclass fills in a subclass prototype that the VM already
// parents under Error.prototype and registers its constructor.
func initErrorSubclass(ctx *RuntimeContext, name string, protoValue vm.Value) error {
	proto := protoValue.AsPlainObject()
	proto.SetOwnNonEnumerable("name", vm.NewString(name))

	ctor := vm.NewNativeFunctionWithProps(1, true, name, func(args []vm.Value) (vm.Value, error) {
		return newErrorInstance(protoValue, name, args), nil
	})
	ctor.AsNativeFunctionWithProps().Properties.SetOwnNonEnumerable("prototype", protoValue)
	proto.SetOwnNonEnumerable("constructor", ctor)

	return ctx.DefineGlobal(name, ctor)
}

// newErrorInstance builds an error object with own name and message, so
// uncaught-exception formatting never has to walk the prototype chain.
func newErrorInstance(protoValue vm.Value, name string, args []vm.Value) vm.Value {
	var message string
	if len(args) > 0 && args[0].Type() != vm.TypeUndefined {
		message = args[0].ToString()
	}
	inst := vm.NewObject(protoValue).AsPlainObject()
	inst.SetOwnNonEnumerable("name", vm.NewString(name))
	inst.SetOwnNonEnumerable("message", vm.NewString(message))
	return vm.NewValueFromPlainObject(inst)
}
