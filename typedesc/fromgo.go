package typedesc

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"gopkg.in/inf.v0"

	"github.com/reoring/chisel/isotime"
)

var (
	rtTime     = reflect.TypeOf(time.Time{})
	rtDuration = reflect.TypeOf(time.Duration(0))
	rtDate     = reflect.TypeOf(isotime.Date{})
	rtClock    = reflect.TypeOf(isotime.Time{})
	rtUUID     = reflect.TypeOf(uuid.UUID{})
	rtDecimal  = reflect.TypeOf((*inf.Dec)(nil))
	rtBytes    = reflect.TypeOf([]byte(nil))
	rtEmpty    = reflect.TypeOf(struct{}{})
)

// FromGo maps a Go type to a descriptor. named is consulted first for every
// type so that registered structs and enums resolve to their declarations;
// it may be nil.
//
// Pointers become optional, slices and arrays lists, map[K]struct{} a set
// and other maps dicts. Struct types must be known to named.
func FromGo(rt reflect.Type, named func(reflect.Type) (*Type, bool)) (*Type, error) {
	if named != nil {
		if t, ok := named(rt); ok {
			return t, nil
		}
	}
	switch rt {
	case rtTime:
		return DateTime, nil
	case rtDuration:
		return Duration, nil
	case rtDate:
		return Date, nil
	case rtClock:
		return Time, nil
	case rtUUID:
		return UUID, nil
	case rtDecimal:
		return Decimal, nil
	case rtBytes:
		return Bytes, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int, nil
	case reflect.Float32, reflect.Float64:
		return Float, nil
	case reflect.String:
		return String, nil
	case reflect.Interface:
		return Any, nil
	case reflect.Pointer:
		elem, err := FromGo(rt.Elem(), named)
		if err != nil {
			return nil, err
		}
		return Optional(elem), nil
	case reflect.Slice, reflect.Array:
		elem, err := FromGo(rt.Elem(), named)
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case reflect.Map:
		key, err := FromGo(rt.Key(), named)
		if err != nil {
			return nil, err
		}
		if rt.Elem() == rtEmpty {
			return SetOf(key), nil
		}
		val, err := FromGo(rt.Elem(), named)
		if err != nil {
			return nil, err
		}
		return DictOf(key, val), nil
	}
	return nil, fmt.Errorf("typedesc: no descriptor for Go type %s", rt)
}
