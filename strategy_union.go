package chisel

import (
	"reflect"
	"time"

	"github.com/reoring/chisel/typedesc"
)

type unionAlt struct {
	t *typedesc.Type
	s Strategy
}

// unionStrategy tries its alternatives in declared order. Alternatives are
// bucketed up front: scalars (bool, int, float, str), records and the rest.
type unionStrategy struct {
	t       *typedesc.Type
	r       *Registry
	alts    []unionAlt
	scalars []unionAlt
	records []unionAlt
	others  []unionAlt
}

func (r *Registry) buildUnion(t *typedesc.Type, strict bool) (Strategy, error) {
	u := &unionStrategy{t: t, r: r}
	for _, a := range typedesc.Args(t) {
		s, err := r.GetFor(a, strict)
		if err != nil {
			return nil, err
		}
		alt := unionAlt{t: a, s: s}
		u.alts = append(u.alts, alt)
		switch {
		case isScalarKind(a.Kind()):
			u.scalars = append(u.scalars, alt)
		case typedesc.IsRecord(a):
			u.records = append(u.records, alt)
		default:
			u.others = append(u.others, alt)
		}
	}
	return u, nil
}

func isScalarKind(k typedesc.Kind) bool {
	switch k {
	case typedesc.KindBool, typedesc.KindInt, typedesc.KindFloat, typedesc.KindString:
		return true
	}
	return false
}

// scalarKind classifies v as one of the four union scalar kinds.
func scalarKind(v any) (typedesc.Kind, bool) {
	if _, ok := v.(time.Duration); ok {
		return typedesc.KindInvalid, false
	}
	if n, ok := v.(number); ok {
		if _, err := n.Int64(); err == nil {
			return typedesc.KindInt, true
		}
		return typedesc.KindFloat, true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool:
		return typedesc.KindBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return typedesc.KindInt, true
	case reflect.Float32, reflect.Float64:
		return typedesc.KindFloat, true
	case reflect.String:
		return typedesc.KindString, true
	}
	return typedesc.KindInvalid, false
}

func firstHydrate(alts []unionAlt, v any) (any, bool) {
	for _, a := range alts {
		if h, err := a.s.Hydrate(v); err == nil {
			return h, true
		}
	}
	return nil, false
}

func (s *unionStrategy) Hydrate(v any) (any, error) {
	if k, ok := scalarKind(v); ok {
		for _, a := range s.scalars {
			if a.t.Kind() == k {
				return a.s.Hydrate(v)
			}
		}
		if h, ok := firstHydrate(s.scalars, v); ok {
			return h, nil
		}
		if h, ok := firstHydrate(s.others, v); ok {
			return h, nil
		}
		return nil, errInvalidValue(s.t.String(), v)
	}
	if _, typed := v.(typedesc.Typed); !typed {
		if in, ok := stringKeyed(v); ok {
			for _, a := range s.records {
				rs, ok := a.s.(*recordStrategy)
				if !ok || !rs.accepts(in) {
					continue
				}
				if h, err := a.s.Hydrate(v); err == nil {
					return h, nil
				}
			}
			if h, ok := firstHydrate(s.records, v); ok {
				return h, nil
			}
			if h, ok := firstHydrate(s.others, v); ok {
				return h, nil
			}
			return nil, errInvalidValue(s.t.String(), v)
		}
	}
	if h, ok := firstHydrate(s.alts, v); ok {
		return h, nil
	}
	return nil, errInvalidValue(s.t.String(), v)
}

func (s *unionStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if rt, ok := s.r.TypeOf(v); ok {
		for _, a := range s.alts {
			if typedesc.Equal(a.t, rt) {
				return a.s.Extract(v)
			}
		}
	}
	k, scalar := scalarKind(v)
	for _, a := range s.alts {
		if isScalarKind(a.t.Kind()) && (!scalar || a.t.Kind() != k) {
			continue
		}
		if e, err := a.s.Extract(v); err == nil {
			return e, nil
		}
	}
	return nil, errInvalidValue(s.t.String(), v)
}
