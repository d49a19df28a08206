package schema

import (
	"github.com/reoring/chisel/typedesc"
)

// Property is one declared field of a record.
type Property struct {
	Name string
	Type *typedesc.Type
	// Default is used when the field is absent on input. It is shared
	// between hydrations; use DefaultFactory for mutable values.
	Default        any
	HasDefault     bool
	DefaultFactory func() any
	// Hydrate and Extract report whether the field is read from input and
	// written to output respectively.
	Hydrate bool
	Extract bool
}

// Required reports whether hydration fails when the field is absent: it has
// no default, no factory and its type does not admit None.
func (p *Property) Required() bool {
	return !p.HasDefault && p.DefaultFactory == nil && !typedesc.IsOptional(p.Type)
}

// HasFallback reports whether the property can produce a value on its own.
func (p *Property) HasFallback() bool { return p.HasDefault || p.DefaultFactory != nil }

// DefaultValue returns a fresh factory value, or the static default.
func (p *Property) DefaultValue() (any, bool) {
	if p.DefaultFactory != nil {
		return p.DefaultFactory(), true
	}
	if p.HasDefault {
		return p.Default, true
	}
	return nil, false
}

// Option configures a Property.
type Option func(*Property)

// Default sets a static default value.
func Default(v any) Option {
	return func(p *Property) {
		p.Default = v
		p.HasDefault = true
	}
}

// DefaultFactory sets a function invoked for every hydration that needs a
// default.
func DefaultFactory(fn func() any) Option {
	return func(p *Property) { p.DefaultFactory = fn }
}

// ExtractOnly marks a field that is written on extraction but never read on
// hydration, such as a value computed by a post-init hook.
func ExtractOnly() Option {
	return func(p *Property) { p.Hydrate = false }
}

// HydrateOnly marks a field that is read on hydration but never extracted.
func HydrateOnly() Option {
	return func(p *Property) { p.Extract = false }
}

// Field declares a property.
func Field(name string, t *typedesc.Type, opts ...Option) *Property {
	p := &Property{Name: name, Type: t, Hydrate: true, Extract: true}
	for _, o := range opts {
		o(p)
	}
	return p
}
