package builtins

import (
	"unicode/utf8"

	"iterati/pkg/vm"
)

type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	stringProto := vmInstance.StringPrototype.AsPlainObject()

	// String.prototype[Symbol.iterator] yields one code point per step
	iterFn := vm.NewNativeFunction(0, false, "[Symbol.iterator]", func(args []vm.Value) (vm.Value, error) {
		thisVal := vmInstance.GetThis()
		if !thisVal.IsString() {
			return vm.Undefined, vmInstance.NewTypeError("String.prototype[Symbol.iterator] requires a string receiver")
		}
		return createStringIterator(vmInstance, thisVal.AsString()), nil
	})
	stringProto.SetOwnByKeyNonEnumerable(vm.NewSymbolKey(vmInstance.SymbolIterator), iterFn)

	stringConstructor := vm.NewNativeFunctionWithProps(1, false, "String", func(args []vm.Value) (vm.Value, error) {
		if len(args) == 0 {
			return vm.NewString(""), nil
		}
		return vm.NewString(args[0].ToString()), nil
	})
	stringConstructor.AsNativeFunctionWithProps().Properties.SetOwnNonEnumerable("prototype", vmInstance.StringPrototype)

	return ctx.DefineGlobal("String", stringConstructor)
}

// createStringIterator walks the string by code point. Surrogate-free
// decoding comes straight from utf8; each step yields a single-rune string.
func createStringIterator(vmInstance *vm.VM, s string) vm.Value {
	iterator := vm.NewObject(vmInstance.IteratorPrototype).AsPlainObject()

	pos := 0
	iterator.SetOwnNonEnumerable("next", vm.NewNativeFunction(0, false, "next", func(args []vm.Value) (vm.Value, error) {
		if pos >= len(s) {
			return vmInstance.CreateIterResultObject(vm.Undefined, true), nil
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		pos += size
		return vmInstance.CreateIterResultObject(vm.NewString(string(r)), false), nil
	}))

	return vm.NewValueFromPlainObject(iterator)
}
