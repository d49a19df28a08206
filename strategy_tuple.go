package chisel

import (
	"github.com/reoring/chisel/typedesc"
)

// tupleStrategy converts fixed and variadic tuples. A variadic tuple keeps
// using its last declared strategy for every trailing element.
type tupleStrategy struct {
	t        *typedesc.Type
	elems    []Strategy
	variadic bool
}

func (r *Registry) buildTuple(t *typedesc.Type, strict bool) (Strategy, error) {
	args := typedesc.Args(t)
	variadic := typedesc.IsVariadic(t)
	if variadic {
		args = args[:len(args)-1]
	}
	elems := make([]Strategy, len(args))
	for i, a := range args {
		s, err := r.GetFor(a, strict)
		if err != nil {
			return nil, err
		}
		elems[i] = s
	}
	return &tupleStrategy{t: t, elems: elems, variadic: variadic}, nil
}

// arity checks n against the declared positions. A variadic tail may be
// empty, so the last declared position is optional.
func (s *tupleStrategy) arity(v any, n int) error {
	lo, hi := len(s.elems), len(s.elems)
	if s.variadic {
		lo, hi = len(s.elems)-1, -1
	}
	switch {
	case n < lo:
		return errInvalidReason("too_short", s.t.String(), v, "want_len", lo, "got_len", n)
	case hi >= 0 && n > hi:
		return errInvalidReason("too_long", s.t.String(), v, "want_len", hi, "got_len", n)
	}
	return nil
}

func (s *tupleStrategy) at(i int) Strategy {
	if i < len(s.elems) {
		return s.elems[i]
	}
	return s.elems[len(s.elems)-1]
}

func (s *tupleStrategy) Hydrate(v any) (any, error) {
	in, ok := sequence(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	if err := s.arity(v, len(in)); err != nil {
		return nil, err
	}
	out := make(Tuple, len(in))
	for i, item := range in {
		h, err := s.at(i).Hydrate(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = h
	}
	return out, nil
}

func (s *tupleStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	in, ok := sequence(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	if err := s.arity(v, len(in)); err != nil {
		return nil, err
	}
	out := make([]any, len(in))
	for i, item := range in {
		e, err := s.at(i).Extract(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = e
	}
	return out, nil
}

// namedTupleStrategy hydrates a sequence into a *NamedTuple, one declared
// field per position.
type namedTupleStrategy struct {
	t      *typedesc.Type
	fields []Strategy
}

func (r *Registry) buildNamedTuple(t *typedesc.Type, strict bool) (Strategy, error) {
	fs := t.Fields()
	s := &namedTupleStrategy{t: t, fields: make([]Strategy, len(fs))}
	for i, f := range fs {
		fst, err := r.GetFor(f.Type, strict)
		if err != nil {
			return nil, err
		}
		s.fields[i] = fst
	}
	return s, nil
}

func (s *namedTupleStrategy) values(v any) ([]any, error) {
	in, ok := sequence(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	switch n := len(s.fields); {
	case len(in) < n:
		return nil, errInvalidReason("too_short", s.t.String(), v, "want_len", n, "got_len", len(in))
	case len(in) > n:
		return nil, errInvalidReason("too_long", s.t.String(), v, "want_len", n, "got_len", len(in))
	}
	return in, nil
}

func (s *namedTupleStrategy) Hydrate(v any) (any, error) {
	in, err := s.values(v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(in))
	for i, item := range in {
		h, err := s.fields[i].Hydrate(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = h
	}
	return &NamedTuple{typ: s.t, values: out}, nil
}

func (s *namedTupleStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	in, err := s.values(v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(in))
	for i, item := range in {
		e, err := s.fields[i].Extract(item)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = e
	}
	return out, nil
}
