package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeFloatNumber
	TypeIntegerNumber
	TypeString
	TypeSymbol
	TypeObject
	TypeArray
	TypeNativeFunction
	TypeNativeFunctionWithProps
	TypeMap
	TypeSet
	TypeMapIterator
	TypeSetIterator
)

func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeFloatNumber, TypeIntegerNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeNativeFunction, TypeNativeFunctionWithProps:
		return "native function"
	case TypeMap:
		return "map"
	case TypeSet:
		return "set"
	case TypeMapIterator:
		return "map iterator"
	case TypeSetIterator:
		return "set iterator"
	default:
		return "unknown"
	}
}

type StringObject struct {
	Object
	value string
}

type SymbolObject struct {
	Object
	value string
}

// Description returns the symbol's description string.
func (s *SymbolObject) Description() string {
	return s.value
}

type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeFloatNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeFloatNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int32) Value {
	return Value{typ: TypeIntegerNumber, payload: uint64(int64(value))}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

// NewSymbol creates a fresh, unique symbol. Two symbols are the same value
// only when they are the same allocation, regardless of description.
func NewSymbol(value string) Value {
	return Value{typ: TypeSymbol, obj: unsafe.Pointer(&SymbolObject{value: value})}
}

// --- Arrays ---

type ArrayObject struct {
	Object
	elements []Value
}

func NewArray() Value {
	return Value{typ: TypeArray, obj: unsafe.Pointer(&ArrayObject{})}
}

// NewArrayFromSlice wraps the given elements in a fresh array. The slice is
// owned by the array afterwards.
func NewArrayFromSlice(elements []Value) Value {
	return Value{typ: TypeArray, obj: unsafe.Pointer(&ArrayObject{elements: elements})}
}

func (a *ArrayObject) Length() int {
	return len(a.elements)
}

// Get returns the element at index, or Undefined when out of range.
func (a *ArrayObject) Get(index int) Value {
	if index < 0 || index >= len(a.elements) {
		return Undefined
	}
	return a.elements[index]
}

// Set stores the element at index, growing the array with undefined holes as
// needed (negative indices are ignored).
func (a *ArrayObject) Set(index int, v Value) {
	if index < 0 {
		return
	}
	for index >= len(a.elements) {
		a.elements = append(a.elements, Undefined)
	}
	a.elements[index] = v
}

func (a *ArrayObject) Append(v Value) {
	a.elements = append(a.elements, v)
}

func (a *ArrayObject) Elements() []Value {
	return a.elements
}

// --- Type predicates ---

func (v Value) IsNumber() bool {
	return v.typ == TypeFloatNumber || v.typ == TypeIntegerNumber
}

func (v Value) IsString() bool {
	return v.typ == TypeString
}

func (v Value) IsSymbol() bool {
	return v.typ == TypeSymbol
}

func (v Value) IsBoolean() bool {
	return v.typ == TypeBoolean
}

// IsUndefined checks if the value is undefined
func (v Value) IsUndefined() bool {
	return v.typ == TypeUndefined
}

func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

func (v Value) IsObject() bool {
	return v.typ == TypeObject || v.typ == TypeArray || v.typ == TypeMap || v.typ == TypeSet ||
		v.typ == TypeMapIterator || v.typ == TypeSetIterator
}

func (v Value) IsArray() bool {
	return v.typ == TypeArray
}

func (v Value) IsCallable() bool {
	return v.typ == TypeNativeFunction || v.typ == TypeNativeFunctionWithProps
}

func (v Value) Type() ValueType {
	return v.typ
}

// TypeName returns the typeof-style name for the value.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeFloatNumber, TypeIntegerNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeNativeFunction, TypeNativeFunctionWithProps:
		return "function"
	default:
		return "object"
	}
}

// --- Accessors ---

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic(fmt.Sprintf("AsBoolean called on %v", v.typ))
	}
	return v.payload != 0
}

func (v Value) AsInteger() int32 {
	if v.typ != TypeIntegerNumber {
		panic(fmt.Sprintf("AsInteger called on %v", v.typ))
	}
	return int32(int64(v.payload))
}

func (v Value) AsFloat() float64 {
	if v.typ != TypeFloatNumber {
		panic(fmt.Sprintf("AsFloat called on %v", v.typ))
	}
	return math.Float64frombits(v.payload)
}

// ToFloat coerces either number representation to float64 (0 for non-numbers).
func (v Value) ToFloat() float64 {
	switch v.typ {
	case TypeFloatNumber:
		return math.Float64frombits(v.payload)
	case TypeIntegerNumber:
		return float64(int32(int64(v.payload)))
	default:
		return 0
	}
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic(fmt.Sprintf("AsString called on %v", v.typ))
	}
	return (*StringObject)(v.obj).value
}

// AsSymbol returns the symbol's description string.
func (v Value) AsSymbol() string {
	if v.typ != TypeSymbol {
		panic(fmt.Sprintf("AsSymbol called on %v", v.typ))
	}
	return (*SymbolObject)(v.obj).value
}

// AsSymbolObject returns the underlying SymbolObject pointer for symbol values
func (v Value) AsSymbolObject() *SymbolObject {
	if v.typ != TypeSymbol {
		return nil
	}
	return (*SymbolObject)(v.obj)
}

func (v Value) AsPlainObject() *PlainObject {
	if v.typ != TypeObject {
		return nil
	}
	return (*PlainObject)(v.obj)
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		return nil
	}
	return (*ArrayObject)(v.obj)
}

func (v Value) AsMap() *MapObject {
	if v.typ != TypeMap {
		return nil
	}
	return (*MapObject)(v.obj)
}

func (v Value) AsSet() *SetObject {
	if v.typ != TypeSet {
		return nil
	}
	return (*SetObject)(v.obj)
}

func (v Value) AsMapIterator() *MapIteratorObject {
	if v.typ != TypeMapIterator {
		return nil
	}
	return (*MapIteratorObject)(v.obj)
}

func (v Value) AsSetIterator() *SetIteratorObject {
	if v.typ != TypeSetIterator {
		return nil
	}
	return (*SetIteratorObject)(v.obj)
}

func (v Value) AsNativeFunction() *NativeFunctionObject {
	if v.typ != TypeNativeFunction {
		return nil
	}
	return (*NativeFunctionObject)(v.obj)
}

func AsNativeFunction(v Value) *NativeFunctionObject { return v.AsNativeFunction() }

func (v Value) AsNativeFunctionWithProps() *NativeFunctionObjectWithProps {
	if v.typ != TypeNativeFunctionWithProps {
		return nil
	}
	return (*NativeFunctionObjectWithProps)(v.obj)
}

// --- Display ---

func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.payload != 0 {
			return "true"
		}
		return "false"
	case TypeIntegerNumber:
		return strconv.FormatInt(int64(v.AsInteger()), 10)
	case TypeFloatNumber:
		f := v.AsFloat()
		if math.IsNaN(f) {
			return "NaN"
		}
		if math.IsInf(f, 1) {
			return "Infinity"
		}
		if math.IsInf(f, -1) {
			return "-Infinity"
		}
		if f == 0 && math.Signbit(f) {
			return "0"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case TypeString:
		return (*StringObject)(v.obj).value
	case TypeSymbol:
		return fmt.Sprintf("Symbol(%s)", (*SymbolObject)(v.obj).value)
	case TypeNativeFunction:
		nativeFn := (*NativeFunctionObject)(v.obj)
		if nativeFn.Name != "" {
			return fmt.Sprintf("<native function %s>", nativeFn.Name)
		}
		return "<native function>"
	case TypeNativeFunctionWithProps:
		nativeFn := (*NativeFunctionObjectWithProps)(v.obj)
		if nativeFn.Name != "" {
			return fmt.Sprintf("<native function %s>", nativeFn.Name)
		}
		return "<native function>"
	case TypeObject:
		return "[object Object]"
	case TypeArray:
		arr := v.AsArray()
		parts := make([]string, len(arr.elements))
		for i, el := range arr.elements {
			parts[i] = el.ToString()
		}
		return strings.Join(parts, ",")
	case TypeMap:
		return "[object Map]"
	case TypeSet:
		return "[object Set]"
	case TypeMapIterator:
		return "[object Map Iterator]"
	case TypeSetIterator:
		return "[object Set Iterator]"
	default:
		return "unknown"
	}
}

// Inspect renders the value for diagnostics: strings quoted, collections
// with their contents, everything else as ToString.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeArray:
		arr := v.AsArray()
		parts := make([]string, len(arr.elements))
		for i, el := range arr.elements {
			parts[i] = el.Inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap:
		return fmt.Sprintf("Map(%d)", v.AsMap().Size())
	case TypeSet:
		return fmt.Sprintf("Set(%d)", v.AsSet().Size())
	default:
		return v.ToString()
	}
}

// --- Truthiness ---

func (v Value) IsFalsey() bool {
	switch v.typ {
	case TypeNull, TypeUndefined:
		return true
	case TypeBoolean:
		return v.payload == 0
	case TypeFloatNumber:
		f := v.AsFloat()
		return f == 0 || math.IsNaN(f) // Catches +0, -0, NaN
	case TypeIntegerNumber:
		return v.AsInteger() == 0
	case TypeString:
		return v.AsString() == ""
	default:
		// Symbols, objects, functions, collections are all truthy
		return false
	}
}

// IsTruthy checks if the value is considered truthy (opposite of IsFalsey).
func (v Value) IsTruthy() bool {
	return !v.IsFalsey()
}

// --- Equality ---

// Is compares two values for equality based on the ECMAScript SameValueZero
// algorithm. NaN === NaN is true, +0 === -0 is true. Used by collections.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		// Handle cross-Number type comparisons for SameValueZero
		if v.IsNumber() && other.IsNumber() {
			vf := v.ToFloat()
			of := other.ToFloat()
			if math.IsNaN(vf) && math.IsNaN(of) {
				return true
			}
			return vf == of
		}
		return false
	}

	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeIntegerNumber:
		return v.AsInteger() == other.AsInteger()
	case TypeFloatNumber:
		vf := v.AsFloat()
		of := other.AsFloat()
		if math.IsNaN(vf) && math.IsNaN(of) {
			return true
		}
		return vf == of
	case TypeString:
		return v.AsString() == other.AsString()
	default:
		// Symbols and all object kinds compare by reference
		return v.obj == other.obj
	}
}

// SameValue implements the ECMAScript SameValue algorithm: like SameValueZero
// except +0 and -0 are distinct. This is the protocol's identity predicate.
func (v Value) SameValue(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		vf := v.ToFloat()
		of := other.ToFloat()
		if math.IsNaN(vf) && math.IsNaN(of) {
			return true
		}
		if vf == 0 && of == 0 {
			return math.Signbit(vf) == math.Signbit(of)
		}
		return vf == of
	}
	return v.Is(other)
}

// StrictlyEquals compares two values using the ECMAScript Strict Equality
// Comparison (`===`). Types must match, no coercion. NaN !== NaN. +0 === -0.
func (v Value) StrictlyEquals(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		vf := v.ToFloat()
		of := other.ToFloat()
		if math.IsNaN(vf) || math.IsNaN(of) {
			return false
		}
		return vf == of
	}

	if v.typ != other.typ {
		return false
	}

	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeString:
		return v.AsString() == other.AsString()
	default:
		return v.obj == other.obj
	}
}
