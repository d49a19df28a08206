package chisel

// Strategy converts between one type's runtime values and plain values.
//
// Hydrate turns a plain value (nil, bool, int64, float64, string, []byte,
// []any, map[string]any) into a runtime value. Extract does the reverse.
// Every Extract passes nil through unchanged.
type Strategy interface {
	Hydrate(v any) (any, error)
	Extract(v any) (any, error)
}

// Funcs adapts a pair of functions to Strategy. A nil function passes
// values through unchanged.
type Funcs struct {
	HydrateFunc func(any) (any, error)
	ExtractFunc func(any) (any, error)
}

func (f Funcs) Hydrate(v any) (any, error) {
	if f.HydrateFunc == nil {
		return v, nil
	}
	return f.HydrateFunc(v)
}

func (f Funcs) Extract(v any) (any, error) {
	if f.ExtractFunc == nil {
		return v, nil
	}
	return f.ExtractFunc(v)
}

// dummyStrategy passes values through in both directions. It backs types
// chisel does not understand when resolution is lenient.
type dummyStrategy struct{}

func (dummyStrategy) Hydrate(v any) (any, error) { return v, nil }
func (dummyStrategy) Extract(v any) (any, error) { return v, nil }

// Dummy returns the passthrough strategy.
func Dummy() Strategy { return dummyStrategy{} }

// noneStrategy accepts only null.
type noneStrategy struct{}

func (noneStrategy) Hydrate(v any) (any, error) {
	if v != nil {
		return nil, errInvalidValue("None", v)
	}
	return nil, nil
}

func (noneStrategy) Extract(any) (any, error) { return nil, nil }

// anyStrategy keeps hydrated values as they are and extracts by the
// runtime type of each value.
type anyStrategy struct {
	r *Registry
}

func (anyStrategy) Hydrate(v any) (any, error) { return v, nil }

func (s anyStrategy) Extract(v any) (any, error) {
	switch v.(type) {
	case nil, bool, int64, float64, string:
		return v, nil
	}
	t, ok := s.r.TypeOf(v)
	if !ok {
		return v, nil
	}
	st, err := s.r.GetFor(t, false)
	if err != nil {
		return nil, err
	}
	return st.Extract(v)
}

// optionalStrategy admits null around an inner strategy. Nested optionals
// collapse because the inner strategy sees null first.
type optionalStrategy struct {
	inner Strategy
}

func (s *optionalStrategy) Hydrate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return s.inner.Hydrate(v)
}

func (s *optionalStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return s.inner.Extract(v)
}
