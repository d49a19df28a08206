// Package schema describes the ordered field lists of record types and how
// record instances are built and read.
//
// A Schema belongs to one record declaration. Its Binding decides what a
// hydrated instance is: a dynamic *Object by default, or a Go struct when
// the schema was registered with RegisterStruct.
package schema

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/chisel/typedesc"
)

// Schema is the ordered property list of one record type. It is not
// modified after registration.
type Schema struct {
	typ      *typedesc.Type
	props    *orderedmap.OrderedMap[string, *Property]
	binding  Binding
	postInit func(any) error
}

// New declares the schema of record t.
func New(t *typedesc.Type, fields ...*Property) *Schema {
	return Extend(t, nil, fields...)
}

// Extend declares the schema of record t on top of base. Base fields come
// first; a field redeclared by t replaces the base field in its original
// position.
func Extend(t *typedesc.Type, base *Schema, fields ...*Property) *Schema {
	if t.Kind() != typedesc.KindRecord || typedesc.Origin(t) != t {
		panic(fmt.Sprintf("schema: %s is not a record declaration", t))
	}
	s := &Schema{typ: t, props: orderedmap.New[string, *Property](), binding: objectBinding{}}
	if base != nil {
		for pair := base.props.Oldest(); pair != nil; pair = pair.Next() {
			s.props.Set(pair.Key, pair.Value)
		}
		s.postInit = base.postInit
	}
	for _, f := range fields {
		s.props.Set(f.Name, f)
	}
	return s
}

func (s *Schema) clone() *Schema {
	c := *s
	return &c
}

// WithBinding returns a copy of s that builds instances through b.
func (s *Schema) WithBinding(b Binding) *Schema {
	c := s.clone()
	c.binding = b
	return c
}

// WithPostInit returns a copy of s that runs fn on every hydrated instance
// once all fields are assigned.
func (s *Schema) WithPostInit(fn func(inst any) error) *Schema {
	c := s.clone()
	c.postInit = fn
	return c
}

// Type returns the record declaration s describes.
func (s *Schema) Type() *typedesc.Type { return s.typ }

// Binding returns the instance binding.
func (s *Schema) Binding() Binding { return s.binding }

// Len returns the number of properties.
func (s *Schema) Len() int { return s.props.Len() }

// Property returns the property called name.
func (s *Schema) Property(name string) (*Property, bool) { return s.props.Get(name) }

// Properties returns the properties in declaration order.
func (s *Schema) Properties() []*Property {
	out := make([]*Property, 0, s.props.Len())
	for pair := s.props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Names returns the property names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, 0, s.props.Len())
	for pair := s.props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// RequiredNames returns the names of the required hydrated properties.
func (s *Schema) RequiredNames() []string {
	var out []string
	for pair := s.props.Oldest(); pair != nil; pair = pair.Next() {
		if p := pair.Value; p.Hydrate && p.Required() {
			out = append(out, p.Name)
		}
	}
	return out
}

// PostInitializer is implemented by record instances that derive fields
// after hydration.
type PostInitializer interface {
	PostInit() error
}

// PostInit runs the schema hook and then the instance's own PostInit.
func (s *Schema) PostInit(inst any) error {
	if s.postInit != nil {
		if err := s.postInit(inst); err != nil {
			return err
		}
	}
	if pi, ok := inst.(PostInitializer); ok {
		return pi.PostInit()
	}
	return nil
}

// Provider yields the schema of a record declaration.
type Provider interface {
	SchemaFor(t *typedesc.Type) (*Schema, error)
}
