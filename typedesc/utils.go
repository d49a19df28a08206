package typedesc

// Origin returns the unparameterized descriptor t was built from, or t itself.
func Origin(t *Type) *Type {
	if t.origin != nil {
		return t.origin
	}
	return t
}

// Args returns the type arguments of a parameterized descriptor.
func Args(t *Type) []*Type { return append([]*Type(nil), t.args...) }

// IsOptional reports whether t is a union whose last alternative is None.
func IsOptional(t *Type) bool {
	return t.kind == KindUnion && len(t.args) > 1 && t.args[len(t.args)-1].kind == KindNone
}

// UnwrapOptional strips the trailing None of an optional union. Optional(X)
// yields X; Union[A, B, None] yields Union[A, B]. Other descriptors are
// returned unchanged.
func UnwrapOptional(t *Type) *Type {
	if !IsOptional(t) {
		return t
	}
	return UnionOf(t.args[:len(t.args)-1]...)
}

// IsRecord reports whether t is a plain or instantiated record.
func IsRecord(t *Type) bool { return t.kind == KindRecord }

// IsGeneric reports whether t is a generic record declaration that still
// has unbound parameters.
func IsGeneric(t *Type) bool {
	return t.kind == KindRecord && t.origin == nil && len(t.params) > 0
}

// IsEnum reports whether t is an enumeration.
func IsEnum(t *Type) bool { return t.kind == KindEnum }

// IsTupleLike reports whether t converts positionally.
func IsTupleLike(t *Type) bool { return t.kind == KindTuple || t.kind == KindNamedTuple }

// IsMapLike reports whether t converts from a mapping.
func IsMapLike(t *Type) bool {
	switch t.kind {
	case KindDict, KindOrderedDict, KindTypedDict, KindRecord:
		return true
	}
	return false
}

// IsCollectionLike reports whether t converts from a sequence of elements.
func IsCollectionLike(t *Type) bool {
	switch t.kind {
	case KindList, KindSequence, KindSet, KindFrozenSet, KindDeque:
		return true
	}
	return false
}

// IsScalar reports whether t converts between a single plain value and a
// single runtime value.
func IsScalar(t *Type) bool {
	switch t.kind {
	case KindBool, KindInt, KindFloat, KindString, KindBytes, KindDecimal,
		KindDate, KindTime, KindDateTime, KindDuration, KindUUID:
		return true
	}
	return false
}

// IsVariadic reports whether t is a tuple ending in Ellipsis.
func IsVariadic(t *Type) bool {
	return t.kind == KindTuple && len(t.args) > 1 && t.args[len(t.args)-1].kind == KindEllipsis
}

// ParamsMap pairs the parameters of t's generic origin with t's arguments.
// It returns nil for descriptors that are not instantiated records.
func ParamsMap(t *Type) map[*Type]*Type {
	if t.kind != KindRecord || t.origin == nil {
		return nil
	}
	m := make(map[*Type]*Type, len(t.args))
	for i, p := range t.origin.params {
		m[p] = t.args[i]
	}
	return m
}

// Substitute replaces every occurrence of a bound parameter inside t.
// Unbound parameters are left in place.
func Substitute(t *Type, bindings map[*Type]*Type) *Type {
	if len(bindings) == 0 {
		return t
	}
	if t.kind == KindParam {
		if b, ok := bindings[t]; ok {
			return b
		}
		return t
	}
	if t.origin == nil {
		return t
	}
	changed := false
	args := make([]*Type, len(t.args))
	for i, a := range t.args {
		args[i] = Substitute(a, bindings)
		changed = changed || args[i] != a
	}
	if !changed {
		return t
	}
	if t.kind == KindUnion {
		return UnionOf(args...)
	}
	return parameterize(t.origin, args)
}

// ContainsParam reports whether t mentions any type parameter.
func ContainsParam(t *Type) bool {
	if t.kind == KindParam {
		return true
	}
	for _, a := range t.args {
		if ContainsParam(a) {
			return true
		}
	}
	return false
}

// MemberByName returns the enum member called name.
func MemberByName(t *Type, name string) (Member, bool) {
	for _, m := range t.members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// FieldByName returns the named-tuple or typed-dict field called name.
func FieldByName(t *Type, name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
