package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/reoring/chisel/typedesc"
)

// ErrNoSchema is returned by SchemaFor for records without a registered
// schema.
var ErrNoSchema = errors.New("schema: no schema registered")

// Registry is a Provider backed by explicit registrations. It also maps Go
// types to the declarations they stand for. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[*typedesc.Type]*Schema
	goTypes map[reflect.Type]*typedesc.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: map[*typedesc.Type]*Schema{},
		goTypes: map[reflect.Type]*typedesc.Type{},
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by package-level helpers.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds s. A record can be registered only once.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.schemas[s.typ]; dup {
		return fmt.Errorf("schema: %s is already registered", s.typ)
	}
	r.schemas[s.typ] = s
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(s *Schema) *Schema {
	if err := r.Register(s); err != nil {
		panic(err)
	}
	return s
}

// SchemaFor returns the schema of t's record declaration. Instantiated
// generic records resolve to the schema of their origin.
func (r *Registry) SchemaFor(t *typedesc.Type) (*Schema, error) {
	if !typedesc.IsRecord(t) {
		return nil, fmt.Errorf("schema: %s is not a record", t)
	}
	origin := typedesc.Origin(t)
	r.mu.RLock()
	s, ok := r.schemas[origin]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoSchema, origin)
	}
	return s, nil
}

// BindGoType records that values of Go type rt are instances of t. Records
// registered with RegisterStruct are bound automatically; enums backed by a
// named Go type are bound explicitly.
func (r *Registry) BindGoType(rt reflect.Type, t *typedesc.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.goTypes[rt]; ok && prev != t {
		return fmt.Errorf("schema: Go type %s is already bound to %s", rt, prev)
	}
	r.goTypes[rt] = t
	return nil
}

func (r *Registry) unbindGo(rt reflect.Type) {
	r.mu.Lock()
	delete(r.goTypes, rt)
	r.mu.Unlock()
}

// TypeForGo returns the declaration bound to exactly rt.
func (r *Registry) TypeForGo(rt reflect.Type) (*typedesc.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.goTypes[rt]
	return t, ok
}

// Records returns every registered record declaration.
func (r *Registry) Records() []*typedesc.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*typedesc.Type, 0, len(r.schemas))
	for t := range r.schemas {
		out = append(out, t)
	}
	return out
}
