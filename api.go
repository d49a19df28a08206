package chisel

import (
	"fmt"
	"reflect"

	"github.com/reoring/chisel/typedesc"
)

// Hydrate converts the plain value v into a runtime value of type t.
func Hydrate(v any, t *typedesc.Type, opts ...Option) (any, error) {
	c := newCallConfig(opts)
	return c.hydrate(v, t)
}

// HydrateAs is Hydrate with the result asserted to T. A null result yields
// the zero T.
func HydrateAs[T any](v any, t *typedesc.Type, opts ...Option) (T, error) {
	var zero T
	out, err := Hydrate(v, t, opts...)
	if err != nil || out == nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, errInvalidValue(reflect.TypeOf((*T)(nil)).Elem().String(), out)
	}
	return typed, nil
}

// Extract converts a runtime value into a plain value. The type is inferred
// from v; see Registry.TypeOf.
func Extract(v any, opts ...Option) (any, error) {
	c := newCallConfig(opts)
	t, ok := c.registry.TypeOf(v)
	if !ok {
		return nil, Issues{newIssue(CodeUnsupportedType, fmt.Sprintf("%T", v), "type", fmt.Sprintf("%T", v))}
	}
	return c.extract(v, t)
}

// ExtractAs converts v, read as a value of type t, into a plain value.
func ExtractAs(v any, t *typedesc.Type, opts ...Option) (any, error) {
	c := newCallConfig(opts)
	return c.extract(v, t)
}

// Hydrate is the package-level Hydrate against r.
func (r *Registry) Hydrate(v any, t *typedesc.Type, opts ...Option) (any, error) {
	return Hydrate(v, t, append(opts[:len(opts):len(opts)], WithRegistry(r))...)
}

// Extract is the package-level Extract against r.
func (r *Registry) Extract(v any, opts ...Option) (any, error) {
	return Extract(v, append(opts[:len(opts):len(opts)], WithRegistry(r))...)
}

// ExtractAs is the package-level ExtractAs against r.
func (r *Registry) ExtractAs(v any, t *typedesc.Type, opts ...Option) (any, error) {
	return ExtractAs(v, t, append(opts[:len(opts):len(opts)], WithRegistry(r))...)
}

func (c callConfig) hydrate(v any, t *typedesc.Type) (any, error) {
	s, err := c.registry.GetFor(t, c.strict)
	if err != nil {
		return nil, err
	}
	if c.mapper != nil {
		if v, err = c.mapper.Map(v); err != nil {
			return nil, err
		}
	}
	return s.Hydrate(v)
}

func (c callConfig) extract(v any, t *typedesc.Type) (any, error) {
	s, err := c.registry.GetFor(t, c.strict)
	if err != nil {
		return nil, err
	}
	out, err := s.Extract(v)
	if err != nil || c.mapper == nil {
		return out, err
	}
	return c.mapper.Map(out)
}
