package chisel

import (
	"github.com/reoring/chisel/mapping"
)

// Option configures a single Hydrate or Extract call.
type Option func(*callConfig)

type callConfig struct {
	registry *Registry
	mapper   mapping.Mapper
	strict   bool
}

func newCallConfig(opts []Option) callConfig {
	c := callConfig{strict: true}
	for _, o := range opts {
		o(&c)
	}
	if c.registry == nil {
		c.registry = Default()
	}
	return c
}

// WithRegistry resolves strategies in r instead of Default().
func WithRegistry(r *Registry) Option {
	return func(c *callConfig) { c.registry = r }
}

// WithMapping reshapes the plain value with m: before hydration, and after
// extraction.
func WithMapping(m mapping.Mapper) Option {
	return func(c *callConfig) { c.mapper = m }
}

// Lenient passes values of types chisel does not understand through
// unchanged instead of failing with unsupported_type.
func Lenient() Option {
	return func(c *callConfig) { c.strict = false }
}
