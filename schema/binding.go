package schema

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/chisel/typedesc"
)

// Binding builds and accesses record instances.
type Binding interface {
	// New returns an empty instance of the record t. t is the concrete
	// (possibly instantiated) record type.
	New(t *typedesc.Type) any
	// Set assigns a hydrated field value.
	Set(inst any, name string, v any) error
	// Get reads a field value. ok is false when the field was never set.
	Get(inst any, name string) (v any, ok bool)
	// Owns reports whether v is an instance of record t built by this
	// binding.
	Owns(t *typedesc.Type, v any) bool
}

// Object is a dynamic record instance. Fields keep their assignment order.
type Object struct {
	typ    *typedesc.Type
	fields *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty instance of record t.
func NewObject(t *typedesc.Type) *Object {
	return &Object{typ: t, fields: orderedmap.New[string, any]()}
}

// TypeDescriptor returns the concrete record type of o.
func (o *Object) TypeDescriptor() *typedesc.Type { return o.typ }

// Get returns the value of field name.
func (o *Object) Get(name string) (any, bool) { return o.fields.Get(name) }

// Set assigns field name.
func (o *Object) Set(name string, v any) { o.fields.Set(name, v) }

// Unset removes field name so that it reads as absent.
func (o *Object) Unset(name string) { o.fields.Delete(name) }

// Len returns the number of assigned fields.
func (o *Object) Len() int { return o.fields.Len() }

// Keys returns the assigned field names in assignment order.
func (o *Object) Keys() []string {
	out := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (o *Object) String() string {
	b := &strings.Builder{}
	b.WriteString(o.typ.String())
	b.WriteByte('{')
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair != o.fields.Oldest() {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %v", pair.Key, pair.Value)
	}
	b.WriteByte('}')
	return b.String()
}

type objectBinding struct{}

func (objectBinding) New(t *typedesc.Type) any { return NewObject(t) }

func (objectBinding) Set(inst any, name string, v any) error {
	o, ok := inst.(*Object)
	if !ok {
		return fmt.Errorf("schema: %T is not a dynamic record", inst)
	}
	o.Set(name, v)
	return nil
}

func (objectBinding) Get(inst any, name string) (any, bool) {
	o, ok := inst.(*Object)
	if !ok || o == nil {
		return nil, false
	}
	return o.Get(name)
}

func (objectBinding) Owns(t *typedesc.Type, v any) bool {
	o, ok := v.(*Object)
	return ok && o != nil && typedesc.Equal(o.typ, t)
}

// Dynamic returns the binding that builds *Object instances. It is the
// default binding of every schema.
func Dynamic() Binding { return objectBinding{} }
