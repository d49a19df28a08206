// Package mapping reshapes plain mappings before hydration and after
// extraction: renaming keys, restructuring nested values and computing
// derived keys.
//
// A Scheme is an ordered list of rules; each rule produces one output key
// (or, for Rest, all keys not consumed by other rules).
//
//	m := mapping.New(mapping.Scheme{
//		mapping.From("name", "full_name"),
//		mapping.Keep("age"),
//		mapping.Nested("pets", mapping.Scheme{mapping.From("name", "pet_name")}),
//	}, mapping.SkipMissing())
//	out, err := m.Map(in)
package mapping

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidScheme reports a rule that cannot be applied.
	ErrInvalidScheme = errors.New("mapping: invalid scheme")
	// ErrInvalidValue reports input of the wrong shape for a rule.
	ErrInvalidValue = errors.New("mapping: invalid value")
)

// Mapper transforms one plain value into another.
type Mapper interface {
	Map(v any) (any, error)
}

// Func adapts a function to Mapper.
type Func func(v any) (any, error)

func (f Func) Map(v any) (any, error) { return f(v) }

type ruleKind int

const (
	ruleKeep ruleKind = iota
	ruleFrom
	ruleNested
	ruleCompute
	ruleRest
)

// Rule produces one output key of a Scheme.
type Rule struct {
	kind    ruleKind
	to      string
	from    string
	nested  Scheme
	compute func(map[string]any) (any, error)
	rest    func(key string, v any) (string, any, error)
}

// Scheme is an ordered list of rules.
type Scheme []Rule

// Keep copies key unchanged.
func Keep(key string) Rule { return Rule{kind: ruleKeep, to: key, from: key} }

// From writes the value of source key from under key to.
func From(to, from string) Rule { return Rule{kind: ruleFrom, to: to, from: from} }

// Nested applies scheme to the value under key. Sequences are mapped
// element by element.
func Nested(key string, scheme Scheme) Rule {
	return Rule{kind: ruleNested, to: key, from: key, nested: scheme}
}

// KeyScheme is Nested reading from a different source key.
func KeyScheme(to, from string, scheme Scheme) Rule {
	return Rule{kind: ruleNested, to: to, from: from, nested: scheme}
}

// Compute writes the result of fn, which sees the whole source mapping.
func Compute(to string, fn func(map[string]any) (any, error)) Rule {
	return Rule{kind: ruleCompute, to: to, compute: fn}
}

// Rest copies every source key not consumed by an earlier rule.
func Rest() Rule { return Rule{kind: ruleRest} }

// RestFunc is Rest with each copied entry passed through fn.
func RestFunc(fn func(key string, v any) (string, any, error)) Rule {
	return Rule{kind: ruleRest, rest: fn}
}

// Option configures a Transform.
type Option func(*Transform)

// PreserveKeys keeps source keys no rule consumed. Rule output wins on
// conflicts.
func PreserveKeys() Option { return func(t *Transform) { t.preserveKeys = true } }

// SkipMissing omits output keys whose source key is absent instead of
// writing the default value.
func SkipMissing() Option { return func(t *Transform) { t.skipMissing = true } }

// DefaultValue sets the value written for absent source keys. Defaults to
// nil.
func DefaultValue(v any) Option { return func(t *Transform) { t.defaultValue = v } }

// Transform applies a Scheme to mappings. Options apply at every nesting
// level.
type Transform struct {
	scheme       Scheme
	preserveKeys bool
	skipMissing  bool
	defaultValue any
}

// New returns a Transform for scheme.
func New(scheme Scheme, opts ...Option) *Transform {
	t := &Transform{scheme: scheme}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Map applies the scheme to v, which must be a map[string]any.
func (t *Transform) Map(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: want a mapping, got %T", ErrInvalidValue, v)
	}
	return t.mapObject(m, t.scheme)
}

func (t *Transform) mapObject(data map[string]any, scheme Scheme) (map[string]any, error) {
	out := make(map[string]any, len(scheme))
	used := map[string]bool{}
	for _, r := range scheme {
		switch r.kind {
		case ruleKeep, ruleFrom:
			used[r.from] = true
			v, ok := data[r.from]
			if !ok {
				if t.skipMissing {
					continue
				}
				v = t.defaultValue
			}
			out[r.to] = v
		case ruleNested:
			used[r.from] = true
			v, ok := data[r.from]
			if !ok {
				if t.skipMissing {
					continue
				}
				v = t.defaultValue
			}
			nv, err := t.mapNested(v, r.nested)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.to, err)
			}
			out[r.to] = nv
		case ruleCompute:
			if r.compute == nil {
				return nil, fmt.Errorf("%w: compute rule %q has no function", ErrInvalidScheme, r.to)
			}
			v, err := r.compute(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.to, err)
			}
			out[r.to] = v
		case ruleRest:
			for _, k := range sortedKeys(data) {
				if used[k] {
					continue
				}
				used[k] = true
				key, v := k, data[k]
				if r.rest != nil {
					var err error
					if key, v, err = r.rest(k, v); err != nil {
						return nil, fmt.Errorf("%s: %w", k, err)
					}
				}
				out[key] = v
			}
		default:
			return nil, fmt.Errorf("%w: unknown rule kind %d", ErrInvalidScheme, r.kind)
		}
	}
	if t.preserveKeys {
		for k, v := range data {
			if _, taken := out[k]; !used[k] && !taken {
				out[k] = v
			}
		}
	}
	return out, nil
}

// mapNested maps a mapping, or each mapping of a sequence. Null stays null.
func (t *Transform) mapNested(v any, scheme Scheme) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return t.mapObject(x, scheme)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, want a mapping", ErrInvalidValue, i, item)
			}
			mv, err := t.mapObject(m, scheme)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = mv
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: want a mapping or a sequence, got %T", ErrInvalidValue, v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
