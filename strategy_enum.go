package chisel

import (
	"reflect"

	"github.com/reoring/chisel/typedesc"
)

// enumStrategy hydrates a member value into its EnumValue and extracts
// members back to their values.
type enumStrategy struct {
	t       *typedesc.Type
	members []typedesc.Member
}

func newEnumStrategy(t *typedesc.Type) *enumStrategy {
	return &enumStrategy{t: t, members: t.Members()}
}

// sameValue compares member values, treating numbers of any Go kind as
// equal when they denote the same number.
func sameValue(a, b any) bool {
	a, b = plainScalar(a), plainScalar(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	if a == b {
		return true
	}
	if _, ok := a.(bool); ok {
		return false
	}
	if _, ok := b.(bool); ok {
		return false
	}
	if _, ok := a.(string); ok {
		return false
	}
	if _, ok := b.(string); ok {
		return false
	}
	fa, ok := toFloat(a)
	if !ok {
		return false
	}
	fb, ok := toFloat(b)
	return ok && fa == fb
}

// plainScalar unwraps named string and bool types.
func plainScalar(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func (s *enumStrategy) lookup(v any) (typedesc.Member, bool) {
	for _, m := range s.members {
		if sameValue(m.Value, v) {
			return m, true
		}
	}
	return typedesc.Member{}, false
}

func (s *enumStrategy) Hydrate(v any) (any, error) {
	if ev, ok := v.(EnumValue); ok && typedesc.Equal(ev.Type, s.t) {
		return ev, nil
	}
	m, ok := s.lookup(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	return EnumValue{Type: s.t, Name: m.Name, Value: m.Value}, nil
}

func (s *enumStrategy) Extract(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case EnumValue:
		if !typedesc.Equal(x.Type, s.t) {
			return nil, errInvalidValue(s.t.String(), v)
		}
		return x.Value, nil
	case *EnumValue:
		if x == nil {
			return nil, nil
		}
		return s.Extract(*x)
	}
	m, ok := s.lookup(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	return m.Value, nil
}
