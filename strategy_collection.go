package chisel

import (
	"reflect"

	"github.com/reoring/chisel/typedesc"
)

// listStrategy converts sequences element by element. kind selects the
// hydrated container: []any, Set, FrozenSet or a deque. Every kind
// extracts to []any.
type listStrategy struct {
	t    *typedesc.Type
	kind typedesc.Kind
	elem Strategy
}

func (r *Registry) buildList(t *typedesc.Type, strict bool) (Strategy, error) {
	elem, err := r.GetFor(typedesc.Args(t)[0], strict)
	if err != nil {
		return nil, err
	}
	return &listStrategy{t: t, kind: t.Kind(), elem: elem}, nil
}

func (s *listStrategy) Hydrate(v any) (any, error) {
	in, ok := sequence(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make([]any, len(in))
	for i, item := range in {
		h, err := s.elem.Hydrate(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = h
	}
	switch s.kind {
	case typedesc.KindSet, typedesc.KindFrozenSet:
		set := make(map[any]struct{}, len(out))
		for i, e := range out {
			if e != nil && !reflect.ValueOf(e).Comparable() {
				return nil, atIndex(errInvalidValue("hashable element", e), i)
			}
			set[e] = struct{}{}
		}
		if s.kind == typedesc.KindFrozenSet {
			return FrozenSet(set), nil
		}
		return Set(set), nil
	case typedesc.KindDeque:
		return NewDeque(out...), nil
	}
	return out, nil
}

func (s *listStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	in, ok := sequence(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make([]any, len(in))
	for i, item := range in {
		e, err := s.elem.Extract(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = e
	}
	return out, nil
}
