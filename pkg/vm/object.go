package vm

import (
	"fmt"
	"unsafe"
)

type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
)

// PropertyKey represents a property key which can be a string or a symbol.
type PropertyKey struct {
	kind      KeyKind
	name      string // for string keys
	symbolVal Value  // for symbol keys (TypeSymbol)
}

func keyFromString(name string) PropertyKey {
	return PropertyKey{kind: KeyKindString, name: name}
}

func keyFromSymbol(sym Value) PropertyKey {
	return PropertyKey{kind: KeyKindSymbol, symbolVal: sym}
}

// NewStringKey constructs an exported PropertyKey for string-named properties.
func NewStringKey(name string) PropertyKey { return keyFromString(name) }

// NewSymbolKey constructs an exported PropertyKey for symbol-named properties.
func NewSymbolKey(sym Value) PropertyKey { return keyFromSymbol(sym) }

func (k PropertyKey) isString() bool { return k.kind == KeyKindString }
func (k PropertyKey) isSymbol() bool { return k.kind == KeyKindSymbol }

func (k PropertyKey) debugName() string {
	switch k.kind {
	case KeyKindString:
		return k.name
	case KeyKindSymbol:
		return fmt.Sprintf("Symbol(%s)", k.symbolVal.AsSymbol())
	default:
		return "<unknown-key>"
	}
}

func (k PropertyKey) hash() string {
	switch k.kind {
	case KeyKindString:
		return "s:" + k.name
	case KeyKindSymbol:
		return fmt.Sprintf("y:%p", k.symbolVal.obj)
	default:
		return "?"
	}
}

type Object struct {
}

type propertyEntry struct {
	key        PropertyKey
	value      Value
	enumerable bool
}

// PlainObject is an ordinary object: insertion-ordered properties (string or
// symbol keyed) plus a prototype reference.
type PlainObject struct {
	Object
	prototype Value
	entries   []propertyEntry
	index     map[string]int // PropertyKey.hash() -> entries offset
}

func NewObject(proto Value) Value {
	obj := &PlainObject{
		prototype: proto,
		index:     make(map[string]int),
	}
	return Value{typ: TypeObject, obj: unsafe.Pointer(obj)}
}

func NewValueFromPlainObject(obj *PlainObject) Value {
	return Value{typ: TypeObject, obj: unsafe.Pointer(obj)}
}

func (o *PlainObject) GetPrototype() Value {
	return o.prototype
}

func (o *PlainObject) SetPrototype(proto Value) {
	o.prototype = proto
}

// GetOwn looks up a direct (own) property by name. Returns (value, true) if present.
func (o *PlainObject) GetOwn(name string) (Value, bool) {
	return o.GetOwnByKey(keyFromString(name))
}

// GetOwnByKey looks up a direct (own) property by key. Returns (value, true) if present.
func (o *PlainObject) GetOwnByKey(key PropertyKey) (Value, bool) {
	if i, ok := o.index[key.hash()]; ok {
		return o.entries[i].value, true
	}
	return Undefined, false
}

func (o *PlainObject) HasOwn(name string) bool {
	_, ok := o.index[keyFromString(name).hash()]
	return ok
}

// SetOwn creates or updates a direct enumerable property.
func (o *PlainObject) SetOwn(name string, v Value) {
	o.setOwnByKey(keyFromString(name), v, true)
}

func (o *PlainObject) SetOwnByKey(key PropertyKey, v Value) {
	o.setOwnByKey(key, v, true)
}

// SetOwnNonEnumerable creates or updates a direct property that enumeration
// skips. Builtin methods are installed this way.
func (o *PlainObject) SetOwnNonEnumerable(name string, v Value) {
	o.setOwnByKey(keyFromString(name), v, false)
}

func (o *PlainObject) SetOwnByKeyNonEnumerable(key PropertyKey, v Value) {
	o.setOwnByKey(key, v, false)
}

func (o *PlainObject) setOwnByKey(key PropertyKey, v Value, enumerable bool) {
	h := key.hash()
	if i, ok := o.index[h]; ok {
		// Updating a value keeps the property's slot and attributes
		o.entries[i].value = v
		return
	}
	o.index[h] = len(o.entries)
	o.entries = append(o.entries, propertyEntry{key: key, value: v, enumerable: enumerable})
}

func (o *PlainObject) DeleteOwn(name string) bool {
	return o.DeleteOwnByKey(keyFromString(name))
}

func (o *PlainObject) DeleteOwnByKey(key PropertyKey) bool {
	h := key.hash()
	i, ok := o.index[h]
	if !ok {
		return false
	}
	delete(o.index, h)
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
	for j := i; j < len(o.entries); j++ {
		o.index[o.entries[j].key.hash()] = j
	}
	return true
}

// OwnEnumerableNames returns the string-keyed enumerable property names in
// insertion order.
func (o *PlainObject) OwnEnumerableNames() []string {
	var names []string
	for _, e := range o.entries {
		if e.enumerable && e.key.isString() {
			names = append(names, e.key.name)
		}
	}
	return names
}
