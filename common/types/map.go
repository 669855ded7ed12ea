package types

import "strings"

// mapKey is a hashable scalar projection of a Value used as a Go map key.
// CEL map keys are restricted (by the checker) to bool/int/uint/string. All
// of them project into this one struct so that a single underlying Go map
// serves every key kind; kind is part of the key, so int(1) and uint(1) are
// distinct keys.
type mapKey struct {
	kind Kind
	s    string
	i    int64
}

func toMapKey(v Value) mapKey {
	switch v.Kind() {
	case KindBool:
		if v.BoolOf() {
			return mapKey{kind: KindBool, i: 1}
		}
		return mapKey{kind: KindBool, i: 0}
	case KindInt:
		return mapKey{kind: KindInt, i: v.IntOf()}
	case KindUint:
		return mapKey{kind: KindUint, i: int64(v.UintOf())}
	case KindString:
		return mapKey{kind: KindString, s: v.StringOf()}
	default:
		return mapKey{kind: v.Kind(), s: v.String()}
	}
}

// entry preserves a key's original Value (e.g. to tell int(1) and uint(1)
// apart when iterating) alongside its bound value.
type entry struct {
	key Value
	val Value
}

// Map is CEL's map container. Entries preserve insertion order, as required
// by §4.5's comprehension-over-map-keys semantics.
type Map struct {
	order []mapKey
	byKey map[mapKey]entry
}

// NewMap constructs an empty, mutable map builder. Use Set to populate it;
// the returned Value shares the same *Map, so construct fully before
// publishing it to concurrent readers (compiled programs never mutate a Map
// after construction completes).
func NewMap() *Map {
	return &Map{byKey: map[mapKey]entry{}}
}

// NewMapValue wraps m in a Value.
func NewMapValue(m *Map) Value { return Value{kind: KindMap, data: m} }

// MapOf extracts the *Map payload.
//
// REQUIRES: v.Kind() == KindMap.
func (v Value) MapOf() *Map { return v.data.(*Map) }

// Set inserts or overwrites key -> val, preserving the position of the first
// insertion of an equal key.
func (m *Map) Set(key, val Value) {
	k := toMapKey(key)
	if _, ok := m.byKey[k]; !ok {
		m.order = append(m.order, k)
	}
	m.byKey[k] = entry{key: key, val: val}
}

// Get looks up key.
func (m *Map) Get(key Value) (Value, bool) {
	e, ok := m.byKey[toMapKey(key)]
	return e.val, ok
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.order) }

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []Value {
	keys := make([]Value, len(m.order))
	for i, k := range m.order {
		keys[i] = m.byKey[k].key
	}
	return keys
}

// Range calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (m *Map) Range(fn func(key, val Value) bool) {
	for _, k := range m.order {
		e := m.byKey[k]
		if !fn(e.key, e.val) {
			return
		}
	}
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	m.Range(func(k, v Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(v.String())
		return true
	})
	b.WriteByte('}')
	return b.String()
}
