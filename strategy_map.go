package chisel

import (
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/chisel/typedesc"
)

// dictStrategy converts mappings key by key and value by value. Hydrated
// dicts are map[any]any; extracted dicts are map[string]any with keys
// formatted as text.
type dictStrategy struct {
	t     *typedesc.Type
	key   Strategy
	value Strategy
}

func (r *Registry) buildDict(t *typedesc.Type, strict bool) (*dictStrategy, error) {
	args := typedesc.Args(t)
	k, err := r.GetFor(args[0], strict)
	if err != nil {
		return nil, err
	}
	v, err := r.GetFor(args[1], strict)
	if err != nil {
		return nil, err
	}
	return &dictStrategy{t: t, key: k, value: v}, nil
}

func keyText(k any) string {
	if s, ok := toString(k); ok {
		return s
	}
	return fmt.Sprint(k)
}

// pair hydrates one entry. Errors are placed under the entry's key.
func (s *dictStrategy) pair(k, v any) (any, any, error) {
	hk, err := s.key.Hydrate(k)
	if err != nil {
		return nil, nil, atKey(err, keyText(k))
	}
	if hk != nil && !reflect.ValueOf(hk).Comparable() {
		return nil, nil, atKey(errInvalidValue("hashable key", hk), keyText(k))
	}
	hv, err := s.value.Hydrate(v)
	if err != nil {
		return nil, nil, atKey(err, keyText(k))
	}
	return hk, hv, nil
}

func (s *dictStrategy) Hydrate(v any) (any, error) {
	es, ok := entries(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make(map[any]any, len(es))
	for _, e := range es {
		k, val, err := s.pair(e.key, e.value)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

func (s *dictStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	es, ok := entries(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make(map[string]any, len(es))
	for _, e := range es {
		ek, err := s.key.Extract(e.key)
		if err != nil {
			return nil, atKey(err, keyText(e.key))
		}
		ks, ok := toString(ek)
		if !ok {
			return nil, atKey(errInvalidValue("dict key", ek), keyText(e.key))
		}
		ev, err := s.value.Extract(e.value)
		if err != nil {
			return nil, atKey(err, ks)
		}
		out[ks] = ev
	}
	return out, nil
}

// orderedDictStrategy hydrates [[k, v], ...] pairs, or a mapping, into an
// ordered map and extracts back to pairs.
type orderedDictStrategy struct {
	dictStrategy
}

func (s *orderedDictStrategy) Hydrate(v any) (any, error) {
	out := orderedmap.New[any, any]()
	if items, ok := sequence(v); ok {
		for i, item := range items {
			kv, ok := sequence(item)
			if !ok || len(kv) != 2 {
				return nil, atIndex(errInvalidValue("[key, value] pair", item), i)
			}
			k, val, err := s.pair(kv[0], kv[1])
			if err != nil {
				return nil, rebase(err, Root().Index(i))
			}
			out.Set(k, val)
		}
		return out, nil
	}
	es, ok := entries(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	for _, e := range es {
		k, val, err := s.pair(e.key, e.value)
		if err != nil {
			return nil, err
		}
		out.Set(k, val)
	}
	return out, nil
}

func (s *orderedDictStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	es, ok := entries(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make([]any, len(es))
	for i, e := range es {
		ek, err := s.key.Extract(e.key)
		if err != nil {
			return nil, atIndex(err, i)
		}
		ev, err := s.value.Extract(e.value)
		if err != nil {
			return nil, atIndex(err, i)
		}
		out[i] = []any{ek, ev}
	}
	return out, nil
}

// typedDictStrategy converts a string-keyed mapping whose keys are
// declared up front. Declared keys may be missing; undeclared ones fail.
type typedDictStrategy struct {
	t      *typedesc.Type
	names  []string
	fields map[string]Strategy
}

func (r *Registry) buildTypedDict(t *typedesc.Type, strict bool) (Strategy, error) {
	fs := t.Fields()
	s := &typedDictStrategy{t: t, names: make([]string, len(fs)), fields: make(map[string]Strategy, len(fs))}
	for i, f := range fs {
		fst, err := r.GetFor(f.Type, strict)
		if err != nil {
			return nil, err
		}
		s.names[i] = f.Name
		s.fields[f.Name] = fst
	}
	return s, nil
}

func (s *typedDictStrategy) convert(v any, conv func(Strategy, any) (any, error)) (any, error) {
	in, ok := stringKeyed(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	for _, e := range mustEntries(in) {
		k := e.key.(string)
		if _, declared := s.fields[k]; !declared {
			return nil, atKey(errInvalidReason("unknown_key", s.t.String(), v, "key", k), k)
		}
	}
	out := make(map[string]any, len(in))
	for _, name := range s.names {
		item, present := in[name]
		if !present {
			continue
		}
		c, err := conv(s.fields[name], item)
		if err != nil {
			return nil, atKey(err, name)
		}
		out[name] = c
	}
	return out, nil
}

func mustEntries(m map[string]any) []entry {
	es, _ := entries(m)
	return es
}

func (s *typedDictStrategy) Hydrate(v any) (any, error) {
	return s.convert(v, Strategy.Hydrate)
}

func (s *typedDictStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return s.convert(v, Strategy.Extract)
}
