package types

import "strings"

// List is CEL's list container. An absent optional element (from
// `[?x, 1, 2]` optional-list syntax) is dropped when the list is built, so a
// materialized List holds only present elements and carries no presence set.
type List struct {
	elems []Value
}

// NewList constructs a list value from elems, which the List takes
// ownership of.
func NewList(elems []Value) Value {
	return Value{kind: KindList, data: &List{elems: elems}}
}

// ListOf extracts the *List payload.
//
// REQUIRES: v.Kind() == KindList.
func (v Value) ListOf() *List { return v.data.(*List) }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Get returns the i'th element.
//
// REQUIRES: 0 <= i < l.Len().
func (l *List) Get(i int) Value { return l.elems[i] }

// Elems returns the backing slice. Callers must not mutate it.
func (l *List) Elems() []Value { return l.elems }

// Append returns a new List with v appended; the receiver is not mutated.
func (l *List) Append(v Value) *List {
	elems := make([]Value, len(l.elems)+1)
	copy(elems, l.elems)
	elems[len(l.elems)] = v
	return &List{elems: elems}
}

// Concat returns a new List that is l followed by other.
func (l *List) Concat(other *List) *List {
	elems := make([]Value, 0, len(l.elems)+len(other.elems))
	elems = append(elems, l.elems...)
	elems = append(elems, other.elems...)
	return &List{elems: elems}
}

// Contains reports whether any element of l equals v under CEL's ==.
func (l *List) Contains(v Value) bool {
	for _, e := range l.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}
