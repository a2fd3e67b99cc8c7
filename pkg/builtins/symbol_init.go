package builtins

import (
	"iterati/pkg/vm"
	"sync"
)

// Global symbol registry for Symbol.for/Symbol.keyFor
var (
	globalSymbolRegistry = make(map[string]vm.Value)
	symbolRegistryMutex  sync.RWMutex
)

type SymbolInitializer struct{}

func (s *SymbolInitializer) Name() string {
	return "Symbol"
}

func (s *SymbolInitializer) Priority() int {
	return PrioritySymbol
}

func (s *SymbolInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	// Symbol constructor with static properties
	ctorWithProps := vm.NewNativeFunctionWithProps(0, true, "Symbol", func(args []vm.Value) (vm.Value, error) {
		var description string
		if len(args) > 0 && args[0].Type() != vm.TypeUndefined {
			description = args[0].ToString()
		}
		return vm.NewSymbol(description), nil
	})
	props := ctorWithProps.AsNativeFunctionWithProps().Properties

	props.SetOwnNonEnumerable("for", vm.NewNativeFunction(1, false, "for", func(args []vm.Value) (vm.Value, error) {
		if len(args) == 0 {
			return vm.Undefined, vmInstance.NewTypeError("Symbol.for requires a key")
		}
		key := args[0].ToString()

		symbolRegistryMutex.Lock()
		defer symbolRegistryMutex.Unlock()

		if sym, exists := globalSymbolRegistry[key]; exists {
			return sym, nil
		}
		sym := vm.NewSymbol(key)
		globalSymbolRegistry[key] = sym
		return sym, nil
	}))

	props.SetOwnNonEnumerable("keyFor", vm.NewNativeFunction(1, false, "keyFor", func(args []vm.Value) (vm.Value, error) {
		if len(args) == 0 || !args[0].IsSymbol() {
			return vm.Undefined, vmInstance.NewTypeError("Symbol.keyFor requires a symbol")
		}
		sym := args[0]

		symbolRegistryMutex.RLock()
		defer symbolRegistryMutex.RUnlock()

		for key, registered := range globalSymbolRegistry {
			if sym.Is(registered) {
				return vm.NewString(key), nil
			}
		}
		// Not a registered symbol
		return vm.Undefined, nil
	}))

	// Well-known symbols as static properties. The VM mints @@iterator
	// at construction; expose that singleton rather than minting a
	// second symbol nothing else would match.
	props.SetOwnNonEnumerable("iterator", vmInstance.SymbolIterator)

	return ctx.DefineGlobal("Symbol", ctorWithProps)
}
