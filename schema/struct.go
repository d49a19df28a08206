package schema

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/inf.v0"

	"github.com/reoring/chisel/typedesc"
)

var rtDecimalPtr = reflect.TypeOf((*inf.Dec)(nil))

// MemberValuer is implemented by hydrated enum members; assigning one to a
// struct field stores the member value.
type MemberValuer interface {
	MemberValue() any
}

// ResolveStructKey returns the external key of a struct field.
// Priority: chisel:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if ct := sf.Tag.Get("chisel"); ct != "" {
		for _, p := range strings.Split(ct, ",") {
			p = strings.TrimSpace(p)
			if p == "-" {
				return "-"
			}
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

type structBinding struct {
	rt     reflect.Type
	fields map[string]int
}

// Struct returns a binding that hydrates records into *T. Fields are
// matched by ResolveStructKey.
func Struct[T any]() Binding {
	return newStructBinding(reflect.TypeOf((*T)(nil)).Elem())
}

func newStructBinding(rt reflect.Type) *structBinding {
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: struct binding requires a struct type, got %s", rt))
	}
	b := &structBinding{rt: rt, fields: map[string]int{}}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "-" || name == "" {
			continue
		}
		b.fields[name] = i
	}
	return b
}

func (b *structBinding) New(*typedesc.Type) any { return reflect.New(b.rt).Interface() }

func (b *structBinding) target(inst any) (reflect.Value, bool) {
	rv := reflect.ValueOf(inst)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type() == b.rt {
		return rv.Elem(), true
	}
	if rv.IsValid() && rv.Type() == b.rt {
		return rv, true
	}
	return reflect.Value{}, false
}

func (b *structBinding) Set(inst any, name string, v any) error {
	rv, ok := b.target(inst)
	if !ok || !rv.CanSet() {
		return fmt.Errorf("schema: %T is not a settable %s", inst, b.rt)
	}
	idx, ok := b.fields[name]
	if !ok {
		return fmt.Errorf("schema: %s has no field for key %q", b.rt, name)
	}
	if err := assign(rv.Field(idx), v); err != nil {
		return fmt.Errorf("schema: %s.%s: %w", b.rt, b.rt.Field(idx).Name, err)
	}
	return nil
}

// Get dereferences pointer fields; a nil pointer reads as nil.
func (b *structBinding) Get(inst any, name string) (any, bool) {
	rv, ok := b.target(inst)
	if !ok {
		return nil, false
	}
	idx, ok := b.fields[name]
	if !ok {
		return nil, false
	}
	fv := rv.Field(idx)
	if fv.Kind() == reflect.Pointer && fv.Type() != rtDecimalPtr {
		if fv.IsNil() {
			return nil, true
		}
		fv = fv.Elem()
	}
	return fv.Interface(), true
}

func (b *structBinding) Owns(_ *typedesc.Type, v any) bool {
	_, ok := b.target(v)
	return ok
}

// GoType returns the struct type the binding builds.
func (b *structBinding) GoType() reflect.Type { return b.rt }

// assign stores v into dst, converting plain containers element by element.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(v)
	dt := dst.Type()
	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}
	if mv, ok := v.(MemberValuer); ok {
		return assign(dst, mv.MemberValue())
	}
	switch {
	case dt.Kind() == reflect.Pointer && src.Kind() != reflect.Pointer:
		p := reflect.New(dt.Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case src.Kind() == reflect.Pointer && dt.Kind() != reflect.Pointer:
		if src.IsNil() {
			dst.Set(reflect.Zero(dt))
			return nil
		}
		return assign(dst, src.Elem().Interface())
	}

	switch dt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if dst.OverflowInt(src.Int()) {
				return fmt.Errorf("%d overflows %s", src.Int(), dt)
			}
			dst.SetInt(src.Int())
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := src.Int()
			if n < 0 || dst.OverflowUint(uint64(n)) {
				return fmt.Errorf("%d overflows %s", n, dt)
			}
			dst.SetUint(uint64(n))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if src.Kind() == reflect.Float64 || src.Kind() == reflect.Float32 {
			dst.SetFloat(src.Float())
			return nil
		}
	case reflect.String, reflect.Bool:
		if src.Kind() == dt.Kind() {
			dst.Set(src.Convert(dt))
			return nil
		}
	case reflect.Slice, reflect.Array:
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			break
		}
		n := src.Len()
		out := dst
		if dt.Kind() == reflect.Slice {
			out = reflect.MakeSlice(dt, n, n)
		} else if n != dt.Len() {
			return fmt.Errorf("cannot assign %d elements to %s", n, dt)
		}
		for i := 0; i < n; i++ {
			if err := assign(out.Index(i), src.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		if dt.Kind() == reflect.Slice {
			dst.Set(out)
		}
		return nil
	case reflect.Map:
		if src.Kind() != reflect.Map {
			break
		}
		out := reflect.MakeMapWithSize(dt, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(dt.Key()).Elem()
			if err := assign(k, iter.Key().Interface()); err != nil {
				return fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			e := reflect.New(dt.Elem()).Elem()
			if val := iter.Value().Interface(); val != nil {
				if err := assign(e, val); err != nil {
					return fmt.Errorf("[%v]: %w", iter.Key(), err)
				}
			}
			out.SetMapIndex(k, e)
		}
		dst.Set(out)
		return nil
	case reflect.Interface:
		if src.Type().Implements(dt) {
			dst.Set(src)
			return nil
		}
	}
	return fmt.Errorf("cannot assign %s to %s", src.Type(), dt)
}

// RegisterStruct declares the schema of record rec from the exported fields
// of T and registers it in r. Field types are derived with typedesc.FromGo,
// resolving nested structs and enums through r; overrides replace derived
// properties of the same name in place.
func RegisterStruct[T any](r *Registry, rec *typedesc.Type, overrides ...*Property) (*Schema, error) {
	b := Struct[T]().(*structBinding)
	byName := map[string]*Property{}
	for _, o := range overrides {
		byName[o.Name] = o
	}
	// Register the Go type first so that self-referencing fields resolve.
	if err := r.BindGoType(b.rt, rec); err != nil {
		return nil, err
	}
	var props []*Property
	for i := 0; i < b.rt.NumField(); i++ {
		sf := b.rt.Field(i)
		name := ResolveStructKey(sf)
		if _, ok := b.fields[name]; !ok || b.fields[name] != i {
			continue
		}
		if o, ok := byName[name]; ok {
			props = append(props, o)
			delete(byName, name)
			continue
		}
		ft, err := typedesc.FromGo(sf.Type, r.TypeForGo)
		if err != nil {
			r.unbindGo(b.rt)
			return nil, fmt.Errorf("schema: %s.%s: %w", b.rt, sf.Name, err)
		}
		props = append(props, Field(name, ft))
	}
	for _, o := range overrides {
		if _, left := byName[o.Name]; left {
			r.unbindGo(b.rt)
			return nil, fmt.Errorf("schema: %s has no field for override %q", b.rt, o.Name)
		}
	}
	s := New(rec, props...).WithBinding(b)
	if err := r.Register(s); err != nil {
		r.unbindGo(b.rt)
		return nil, err
	}
	return s, nil
}

// MustRegisterStruct is like RegisterStruct but panics on error.
func MustRegisterStruct[T any](r *Registry, rec *typedesc.Type, overrides ...*Property) *Schema {
	s, err := RegisterStruct[T](r, rec, overrides...)
	if err != nil {
		panic(err)
	}
	return s
}
