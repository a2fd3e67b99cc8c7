package vm

import (
	"fmt"
	"math"
	"strconv"
	"unsafe"
)

// hashKey produces a string key for any value under SameValueZero
// equality: NaN collapses to one key, +0 and -0 share a key, and
// objects are keyed by identity.
func hashKey(v Value) string {
	switch v.Type() {
	case TypeNull:
		return "null"
	case TypeUndefined:
		return "undefined"
	case TypeString:
		return "s:" + v.AsString()
	case TypeBoolean:
		if v.AsBoolean() {
			return "b:true"
		}
		return "b:false"
	case TypeFloatNumber, TypeIntegerNumber:
		f := v.ToFloat()
		if math.IsNaN(f) {
			return "n:NaN"
		}
		if f == 0 {
			return "n:0"
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return fmt.Sprintf("o:%p", v.obj)
	}
}

// MapObject is the backing store for Map values. Insertion order is
// tracked in a slot list so iterators created before a mutation keep
// working: deleting an entry blanks its slot rather than shifting the
// list, and re-inserting the same key appends a fresh slot at the end.
type MapObject struct {
	Object
	size    int
	entries map[string]Value // hash -> value
	keys    map[string]Value // hash -> original key
	slot    map[string]int   // hash -> index in order
	order   []string         // insertion order; "" marks a deleted slot
}

// SetObject is the backing store for Set values. It shares MapObject's
// slot-list approach to keep live iterators valid across mutations.
type SetObject struct {
	Object
	size   int
	values map[string]Value // hash -> original value
	slot   map[string]int   // hash -> index in order
	order  []string         // insertion order; "" marks a deleted slot
}

func NewMap() Value {
	mapObj := &MapObject{
		entries: make(map[string]Value),
		keys:    make(map[string]Value),
		slot:    make(map[string]int),
	}
	return Value{typ: TypeMap, obj: unsafe.Pointer(mapObj)}
}

func NewSet() Value {
	setObj := &SetObject{
		values: make(map[string]Value),
		slot:   make(map[string]int),
	}
	return Value{typ: TypeSet, obj: unsafe.Pointer(setObj)}
}

func (m *MapObject) Set(key, value Value) {
	keyStr := hashKey(key)
	if _, exists := m.entries[keyStr]; !exists {
		m.slot[keyStr] = len(m.order)
		m.order = append(m.order, keyStr)
		m.size++
	}
	m.entries[keyStr] = value
	m.keys[keyStr] = key
}

func (m *MapObject) Get(key Value) Value {
	if value, exists := m.entries[hashKey(key)]; exists {
		return value
	}
	return Undefined
}

func (m *MapObject) Has(key Value) bool {
	_, exists := m.entries[hashKey(key)]
	return exists
}

func (m *MapObject) Delete(key Value) bool {
	keyStr := hashKey(key)
	if _, exists := m.entries[keyStr]; !exists {
		return false
	}
	// Blank the slot instead of shifting the order list so live
	// iterators keep their positions.
	m.order[m.slot[keyStr]] = ""
	delete(m.entries, keyStr)
	delete(m.keys, keyStr)
	delete(m.slot, keyStr)
	m.size--
	return true
}

// Clear removes every entry but keeps the slot list's length, so
// iterators in flight observe the remaining slots as deleted instead
// of terminating early.
func (m *MapObject) Clear() {
	for i := range m.order {
		m.order[i] = ""
	}
	m.entries = make(map[string]Value)
	m.keys = make(map[string]Value)
	m.slot = make(map[string]int)
	m.size = 0
}

func (m *MapObject) Size() int {
	return m.size
}

// ForEach calls fn for each live entry in insertion order.
func (m *MapObject) ForEach(fn func(key Value, value Value)) {
	for _, keyStr := range m.order {
		if keyStr == "" {
			continue
		}
		if value, exists := m.entries[keyStr]; exists {
			fn(m.keys[keyStr], value)
		}
	}
}

// OrderLen returns the slot list length including deleted slots.
// Iterators walk indices up to this bound.
func (m *MapObject) OrderLen() int {
	return len(m.order)
}

// GetEntryAt returns the key-value pair at the given slot index, or
// (Undefined, Undefined, false) when the index is out of bounds or the
// slot was deleted.
func (m *MapObject) GetEntryAt(index int) (Value, Value, bool) {
	if index < 0 || index >= len(m.order) {
		return Undefined, Undefined, false
	}
	keyStr := m.order[index]
	if keyStr == "" {
		return Undefined, Undefined, false
	}
	value, exists := m.entries[keyStr]
	if !exists {
		return Undefined, Undefined, false
	}
	return m.keys[keyStr], value, true
}

func (s *SetObject) Add(value Value) {
	keyStr := hashKey(value)
	if _, exists := s.values[keyStr]; !exists {
		s.slot[keyStr] = len(s.order)
		s.order = append(s.order, keyStr)
		s.size++
	}
	s.values[keyStr] = value
}

func (s *SetObject) Has(value Value) bool {
	_, exists := s.values[hashKey(value)]
	return exists
}

func (s *SetObject) Delete(value Value) bool {
	keyStr := hashKey(value)
	if _, exists := s.values[keyStr]; !exists {
		return false
	}
	s.order[s.slot[keyStr]] = ""
	delete(s.values, keyStr)
	delete(s.slot, keyStr)
	s.size--
	return true
}

// Clear removes every value but keeps the slot list's length for the
// benefit of live iterators.
func (s *SetObject) Clear() {
	for i := range s.order {
		s.order[i] = ""
	}
	s.values = make(map[string]Value)
	s.slot = make(map[string]int)
	s.size = 0
}

func (s *SetObject) Size() int {
	return s.size
}

// ForEach calls fn for each live value in insertion order.
func (s *SetObject) ForEach(fn func(value Value)) {
	for _, keyStr := range s.order {
		if keyStr == "" {
			continue
		}
		if val, exists := s.values[keyStr]; exists {
			fn(val)
		}
	}
}

// OrderLen returns the slot list length including deleted slots.
func (s *SetObject) OrderLen() int {
	return len(s.order)
}

// GetValueAt returns the value at the given slot index, or
// (Undefined, false) when the index is out of bounds or the slot was
// deleted.
func (s *SetObject) GetValueAt(index int) (Value, bool) {
	if index < 0 || index >= len(s.order) {
		return Undefined, false
	}
	keyStr := s.order[index]
	if keyStr == "" {
		return Undefined, false
	}
	if val, exists := s.values[keyStr]; exists {
		return val, true
	}
	return Undefined, false
}
