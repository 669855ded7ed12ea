package types

import "strings"

// Attribute is a qualified access path root_var (.field | [key])* (§3). It is
// the unit of currency for unknown-attribute propagation and for the
// resolvers registered against AttributePattern (§6).
type Attribute struct {
	Root  string
	Quals []Qualifier
}

// Qualifier is one step of an attribute path: a field-name select or an
// index (list position or map key).
type Qualifier struct {
	Field string // set for a `.field` step
	Key   Value  // set for a `[key]` step; Field == "" in that case
}

func (a Attribute) String() string {
	var b strings.Builder
	b.WriteString(a.Root)
	for _, q := range a.Quals {
		if q.Field != "" {
			b.WriteByte('.')
			b.WriteString(q.Field)
		} else {
			b.WriteByte('[')
			b.WriteString(q.Key.String())
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Equal reports whether a and other denote the exact same concrete path
// (wildcards are a pattern-only concept; see AttributePattern).
func (a Attribute) Equal(other Attribute) bool {
	if a.Root != other.Root || len(a.Quals) != len(other.Quals) {
		return false
	}
	for i := range a.Quals {
		q, o := a.Quals[i], other.Quals[i]
		if q.Field != o.Field {
			return false
		}
		if q.Field == "" && !Equal(q.Key, o.Key) {
			return false
		}
	}
	return true
}

// UnknownVal is the deferred-lookup value variant (§3, §5). It carries the
// set of attributes whose resolution would be required to continue
// evaluating; operators merge Unknown operands by attribute-set union.
type UnknownVal struct {
	Attrs []Attribute
}

// NewUnknown constructs an Unknown value over a single attribute.
func NewUnknown(attr Attribute) Value {
	return Value{kind: KindUnknown, data: &UnknownVal{Attrs: []Attribute{attr}}}
}

// NewUnknownSet constructs an Unknown value over an already-deduped set of
// attributes.
func NewUnknownSet(attrs []Attribute) Value {
	return Value{kind: KindUnknown, data: &UnknownVal{Attrs: attrs}}
}

// UnknownOf extracts the *UnknownVal payload.
//
// REQUIRES: v.Kind() == KindUnknown.
func (v Value) UnknownOf() *UnknownVal { return v.data.(*UnknownVal) }

// IsUnknown reports whether v is an Unknown value.
func (v Value) IsUnknown() bool { return v.kind == KindUnknown }

// MergeUnknowns unions the attribute sets of one or more Unknown values,
// deduplicating exact-path repeats. It implements the "union of unknown sets
// across all non-error args" rule from §4.5.
func MergeUnknowns(vals ...Value) Value {
	var merged []Attribute
	for _, v := range vals {
		if !v.IsUnknown() {
			continue
		}
		for _, a := range v.UnknownOf().Attrs {
			dup := false
			for _, m := range merged {
				if m.Equal(a) {
					dup = true
					break
				}
			}
			if !dup {
				merged = append(merged, a)
			}
		}
	}
	return NewUnknownSet(merged)
}

func (u *UnknownVal) String() string {
	var b strings.Builder
	b.WriteString("unknown{")
	for i, a := range u.Attrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte('}')
	return b.String()
}

// AttributePattern is an Attribute whose qualifier positions may be
// wildcarded (§3), used both to declare which variables/paths are unknown in
// an Activation and to register an attribute resolver (§6).
type AttributePattern struct {
	Root  string
	Quals []PatternQualifier
}

// PatternQualifier is one step of an AttributePattern: a wildcard, a
// field-name match, or a key match.
type PatternQualifier struct {
	Wildcard bool
	Field    string
	Key      Value
}

// Matches reports whether attr is covered by pattern p.
func (p AttributePattern) Matches(attr Attribute) bool {
	if p.Root != attr.Root {
		return false
	}
	if len(p.Quals) > len(attr.Quals) {
		return false
	}
	for i, pq := range p.Quals {
		if pq.Wildcard {
			continue
		}
		aq := attr.Quals[i]
		if pq.Field != "" {
			if pq.Field != aq.Field {
				return false
			}
			continue
		}
		if aq.Field != "" || !Equal(pq.Key, aq.Key) {
			return false
		}
	}
	return true
}
