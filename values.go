package chisel

import (
	"fmt"
	"reflect"
	"sort"

	list "github.com/bahlo/generic-list-go"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/chisel/typedesc"
)

// Tuple is a hydrated tuple.
type Tuple []any

// Set is a hydrated set. Elements must be comparable.
type Set map[any]struct{}

// FrozenSet is a hydrated frozen set. chisel never mutates it after
// hydration.
type FrozenSet map[any]struct{}

// NewSet returns a set holding elems.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// Has reports whether v is in s.
func (s Set) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the elements ordered by their formatted representation.
func (s Set) Sorted() []any { return sortedKeys(s) }

// NewFrozenSet returns a frozen set holding elems.
func NewFrozenSet(elems ...any) FrozenSet { return FrozenSet(NewSet(elems...)) }

// Has reports whether v is in s.
func (s FrozenSet) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the elements ordered by their formatted representation.
func (s FrozenSet) Sorted() []any { return sortedKeys(s) }

func sortedKeys(m map[any]struct{}) []any {
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return fmt.Sprint(out[i]) < fmt.Sprint(out[j]) })
	return out
}

// NewDeque returns a deque holding elems in order.
func NewDeque(elems ...any) *list.List[any] {
	l := list.New[any]()
	for _, e := range elems {
		l.PushBack(e)
	}
	return l
}

// NewOrderedDict returns an ordered dict filled from key/value pairs.
func NewOrderedDict(pairs ...[2]any) *orderedmap.OrderedMap[any, any] {
	m := orderedmap.New[any, any]()
	for _, p := range pairs {
		m.Set(p[0], p[1])
	}
	return m
}

// EnumValue is a hydrated enumeration member.
type EnumValue struct {
	Type  *typedesc.Type
	Name  string
	Value any
}

// TypeDescriptor returns the enum declaration.
func (e EnumValue) TypeDescriptor() *typedesc.Type { return e.Type }

// MemberValue returns the underlying member value.
func (e EnumValue) MemberValue() any { return e.Value }

func (e EnumValue) String() string { return e.Type.Name() + "." + e.Name }

// NamedTuple is a hydrated named tuple.
type NamedTuple struct {
	typ    *typedesc.Type
	values []any
}

// NewNamedTuple builds an instance of the named tuple t. values must match
// the declared field count.
func NewNamedTuple(t *typedesc.Type, values ...any) (*NamedTuple, error) {
	if t.Kind() != typedesc.KindNamedTuple {
		return nil, errInvalidType(t, "not a named tuple")
	}
	if n := len(t.Fields()); len(values) != n {
		return nil, errInvalidValue(t.String(), Tuple(values), "want_len", n, "got_len", len(values))
	}
	return &NamedTuple{typ: t, values: append([]any(nil), values...)}, nil
}

// TypeDescriptor returns the named tuple declaration.
func (n *NamedTuple) TypeDescriptor() *typedesc.Type { return n.typ }

// Len returns the number of positions.
func (n *NamedTuple) Len() int { return len(n.values) }

// At returns the value at position i.
func (n *NamedTuple) At(i int) any { return n.values[i] }

// Get returns the value of the field called name.
func (n *NamedTuple) Get(name string) (any, bool) {
	for i, f := range n.typ.Fields() {
		if f.Name == name {
			return n.values[i], true
		}
	}
	return nil, false
}

// Values returns a copy of the positional values.
func (n *NamedTuple) Values() []any { return append([]any(nil), n.values...) }

func (n *NamedTuple) String() string {
	return fmt.Sprintf("%s%v", n.typ.Name(), n.values)
}

// sequence returns the elements of a sequence-shaped value. Strings and
// byte slices are not sequences.
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case Tuple:
		return s, true
	case Set:
		return s.Sorted(), true
	case FrozenSet:
		return s.Sorted(), true
	case *list.List[any]:
		out := make([]any, 0, s.Len())
		for e := s.Front(); e != nil; e = e.Next() {
			out = append(out, e.Value)
		}
		return out, true
	case *NamedTuple:
		return s.Values(), true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Elem() == rtEmptyStruct {
		keys := make(map[any]struct{}, rv.Len())
		for _, k := range rv.MapKeys() {
			keys[k.Interface()] = struct{}{}
		}
		return sortedKeys(keys), true
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

var rtEmptyStruct = reflect.TypeOf(struct{}{})

type entry struct {
	key, value any
}

// entries returns the entries of a mapping-shaped value. Unordered maps
// are returned in formatted key order so conversion is deterministic.
func entries(v any) ([]entry, bool) {
	switch m := v.(type) {
	case nil, Set, FrozenSet:
		return nil, false
	case *orderedmap.OrderedMap[any, any]:
		out := make([]entry, 0, m.Len())
		for p := m.Oldest(); p != nil; p = p.Next() {
			out = append(out, entry{p.Key, p.Value})
		}
		return out, true
	case *orderedmap.OrderedMap[string, any]:
		out := make([]entry, 0, m.Len())
		for p := m.Oldest(); p != nil; p = p.Next() {
			out = append(out, entry{p.Key, p.Value})
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, entry{iter.Key().Interface(), iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return fmt.Sprint(out[i].key) < fmt.Sprint(out[j].key) })
	return out, true
}

// stringKeyed returns v as a map with string keys, the shape records and
// typed dicts hydrate from.
func stringKeyed(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	es, ok := entries(v)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(es))
	for _, e := range es {
		k, ok := e.key.(string)
		if !ok {
			return nil, false
		}
		out[k] = e.value
	}
	return out, true
}
