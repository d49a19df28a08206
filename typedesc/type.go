// Package typedesc models the shapes chisel can convert as a closed set of
// immutable type descriptors.
//
// A descriptor is either a builtin (scalars, bare containers), a named
// declaration (records, enums, named tuples, typed dicts, type parameters,
// opaque types) or a parameterization of one of those (ListOf(Int),
// Instantiate(Box, String), UnionOf(A, B)). Named declarations carry a
// process-unique identity, so two records both called "Pet" never share a
// cache slot.
package typedesc

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Kind enumerates descriptor shapes.
type Kind int

const (
	KindInvalid Kind = iota
	KindAny
	KindNone
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindDecimal
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindUUID
	KindList
	KindSequence
	KindSet
	KindFrozenSet
	KindDeque
	KindTuple
	KindDict
	KindOrderedDict
	KindUnion
	KindRecord
	KindEnum
	KindNamedTuple
	KindTypedDict
	KindParam
	KindEllipsis
	KindOpaque
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindAny:         "any",
	KindNone:        "none",
	KindBool:        "bool",
	KindInt:         "int",
	KindFloat:       "float",
	KindString:      "string",
	KindBytes:       "bytes",
	KindDecimal:     "decimal",
	KindDate:        "date",
	KindTime:        "time",
	KindDateTime:    "datetime",
	KindDuration:    "duration",
	KindUUID:        "uuid",
	KindList:        "list",
	KindSequence:    "sequence",
	KindSet:         "set",
	KindFrozenSet:   "frozenset",
	KindDeque:       "deque",
	KindTuple:       "tuple",
	KindDict:        "dict",
	KindOrderedDict: "ordereddict",
	KindUnion:       "union",
	KindRecord:      "record",
	KindEnum:        "enum",
	KindNamedTuple:  "namedtuple",
	KindTypedDict:   "typeddict",
	KindParam:       "param",
	KindEllipsis:    "ellipsis",
	KindOpaque:      "opaque",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Field is a declared (name, type) pair of a named tuple or typed dict.
type Field struct {
	Name string
	Type *Type
}

// Member is one enumeration member.
type Member struct {
	Name  string
	Value any
}

// Type is an immutable type descriptor. Compare descriptors with Equal or
// by Key; pointer identity only holds for declarations.
type Type struct {
	kind    Kind
	name    string
	id      uint64
	origin  *Type
	args    []*Type
	params  []*Type
	fields  []Field
	members []Member
	key     string
	str     string
}

// Typed is implemented by runtime values that know their descriptor, such
// as dynamic record objects and enum values.
type Typed interface {
	TypeDescriptor() *Type
}

var nextID atomic.Uint64

func builtin(k Kind, name string) *Type {
	return &Type{kind: k, name: name, key: name, str: name}
}

// Builtin descriptors. The container descriptors are the bare,
// unparameterized origins.
var (
	Any         = builtin(KindAny, "any")
	None        = builtin(KindNone, "None")
	Bool        = builtin(KindBool, "bool")
	Int         = builtin(KindInt, "int")
	Float       = builtin(KindFloat, "float")
	String      = builtin(KindString, "str")
	Bytes       = builtin(KindBytes, "bytes")
	Decimal     = builtin(KindDecimal, "Decimal")
	Date        = builtin(KindDate, "date")
	Time        = builtin(KindTime, "time")
	DateTime    = builtin(KindDateTime, "datetime")
	Duration    = builtin(KindDuration, "duration")
	UUID        = builtin(KindUUID, "UUID")
	List        = builtin(KindList, "List")
	Sequence    = builtin(KindSequence, "Sequence")
	Set         = builtin(KindSet, "Set")
	FrozenSet   = builtin(KindFrozenSet, "FrozenSet")
	Deque       = builtin(KindDeque, "Deque")
	Tuple       = builtin(KindTuple, "Tuple")
	Dict        = builtin(KindDict, "Dict")
	OrderedDict = builtin(KindOrderedDict, "OrderedDict")
	Union       = builtin(KindUnion, "Union")
	// Ellipsis marks the variadic tail of a tuple: TupleOf(Int, Ellipsis).
	Ellipsis = builtin(KindEllipsis, "...")
)

func declare(k Kind, name string) *Type {
	id := nextID.Add(1)
	return &Type{kind: k, name: name, id: id, key: name + "#" + strconv.FormatUint(id, 10), str: name}
}

// Record declares a record type. Passing type parameters declares a generic
// record, which must be instantiated before it can be converted.
func Record(name string, params ...*Type) *Type {
	for _, p := range params {
		if p.kind != KindParam {
			panic("typedesc: record " + name + " declared with non-parameter " + p.String())
		}
	}
	t := declare(KindRecord, name)
	t.params = append([]*Type(nil), params...)
	return t
}

// Param declares a type parameter.
func Param(name string) *Type { return declare(KindParam, name) }

// Enum declares an enumeration with ordered members.
func Enum(name string, members ...Member) *Type {
	t := declare(KindEnum, name)
	t.members = append([]Member(nil), members...)
	return t
}

// NamedTupleType declares a tuple with named positions. Fields with a nil
// type are untyped and convert as Any.
func NamedTupleType(name string, fields ...Field) *Type {
	t := declare(KindNamedTuple, name)
	t.fields = normalizeFields(fields)
	return t
}

// TypedDictType declares a mapping with a fixed set of typed keys.
func TypedDictType(name string, fields ...Field) *Type {
	t := declare(KindTypedDict, name)
	t.fields = normalizeFields(fields)
	return t
}

// Opaque declares a type chisel has no structural knowledge of. It converts
// only through a custom strategy or, in lenient mode, by passthrough.
func Opaque(name string) *Type { return declare(KindOpaque, name) }

func normalizeFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		if f.Type == nil {
			f.Type = Any
		}
		out[i] = f
	}
	return out
}

func parameterize(origin *Type, args []*Type) *Type {
	t := &Type{kind: origin.kind, name: origin.name, origin: origin, args: args}
	keys := make([]string, len(args))
	strs := make([]string, len(args))
	for i, a := range args {
		keys[i] = a.key
		strs[i] = a.str
	}
	t.key = origin.key + "[" + strings.Join(keys, ", ") + "]"
	t.str = origin.str + "[" + strings.Join(strs, ", ") + "]"
	return t
}

// ListOf returns List[elem].
func ListOf(elem *Type) *Type { return parameterize(List, []*Type{elem}) }

// SequenceOf returns Sequence[elem]; it converts like a list.
func SequenceOf(elem *Type) *Type { return parameterize(Sequence, []*Type{elem}) }

// SetOf returns Set[elem].
func SetOf(elem *Type) *Type { return parameterize(Set, []*Type{elem}) }

// FrozenSetOf returns FrozenSet[elem].
func FrozenSetOf(elem *Type) *Type { return parameterize(FrozenSet, []*Type{elem}) }

// DequeOf returns Deque[elem].
func DequeOf(elem *Type) *Type { return parameterize(Deque, []*Type{elem}) }

// TupleOf returns a fixed-arity tuple, or a variadic one when the last
// element is Ellipsis.
func TupleOf(elems ...*Type) *Type {
	for i, e := range elems {
		if e.kind == KindEllipsis && (i == 0 || i != len(elems)-1) {
			panic("typedesc: ellipsis must follow at least one element and end the tuple")
		}
	}
	return parameterize(Tuple, append([]*Type(nil), elems...))
}

// DictOf returns Dict[key, value].
func DictOf(key, value *Type) *Type { return parameterize(Dict, []*Type{key, value}) }

// OrderedDictOf returns OrderedDict[key, value].
func OrderedDictOf(key, value *Type) *Type {
	return parameterize(OrderedDict, []*Type{key, value})
}

// UnionOf returns the union of the alternatives. Nested unions are
// flattened, duplicates removed (first occurrence wins) and a single
// remaining alternative is returned as is.
func UnionOf(alts ...*Type) *Type {
	var flat []*Type
	seen := map[string]bool{}
	var add func(t *Type)
	add = func(t *Type) {
		if t.kind == KindUnion && t.origin != nil {
			for _, a := range t.args {
				add(a)
			}
			return
		}
		if seen[t.key] {
			return
		}
		seen[t.key] = true
		flat = append(flat, t)
	}
	for _, a := range alts {
		add(a)
	}
	switch len(flat) {
	case 0:
		panic("typedesc: union needs at least one alternative")
	case 1:
		return flat[0]
	}
	return parameterize(Union, flat)
}

// Optional returns Union[t, None].
func Optional(t *Type) *Type { return UnionOf(t, None) }

// Instantiate binds a generic record's type parameters to args. It panics
// when generic is not a generic record or the arity differs, in the way
// regexp.MustCompile panics on a malformed literal.
func Instantiate(generic *Type, args ...*Type) *Type {
	if generic.kind != KindRecord || generic.origin != nil || len(generic.params) == 0 {
		panic("typedesc: " + generic.String() + " is not a generic record")
	}
	if len(args) != len(generic.params) {
		panic("typedesc: " + generic.String() + " expects " + strconv.Itoa(len(generic.params)) + " type arguments")
	}
	return parameterize(generic, append([]*Type(nil), args...))
}

// Kind returns the shape of t. A parameterized descriptor has its origin's
// kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the declared or builtin name.
func (t *Type) Name() string { return t.name }

// Key returns the canonical identity used for caching.
func (t *Type) Key() string { return t.key }

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.str
}

// Params returns the declared type parameters of a generic record.
func (t *Type) Params() []*Type { return append([]*Type(nil), t.params...) }

// Fields returns the declared fields of a named tuple or typed dict.
func (t *Type) Fields() []Field { return append([]Field(nil), t.fields...) }

// Members returns the members of an enum.
func (t *Type) Members() []Member { return append([]Member(nil), t.members...) }

// Equal reports whether a and b describe the same type.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.key == b.key
}
