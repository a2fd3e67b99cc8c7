package builtins

import "sort"

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	var initializers []BuiltinInitializer

	// Core protocol surface
	initializers = append(initializers, &SymbolInitializer{})
	initializers = append(initializers, &IteratorInitializer{})
	initializers = append(initializers, &ErrorInitializer{})

	// Iterable builtins
	initializers = append(initializers, &ArrayInitializer{})
	initializers = append(initializers, &StringInitializer{})
	initializers = append(initializers, &MapInitializer{})
	initializers = append(initializers, &SetInitializer{})

	// Sort by priority (lower numbers first)
	sort.Slice(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}
