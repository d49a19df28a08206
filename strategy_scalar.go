package chisel

import (
	"encoding/base64"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/inf.v0"

	"github.com/reoring/chisel/isotime"
	"github.com/reoring/chisel/typedesc"
)

// scalarStrategy converts a single value with a pair of cast functions.
type scalarStrategy struct {
	t       *typedesc.Type
	hydrate func(any) (any, error)
	extract func(any) (any, error)
}

func (s *scalarStrategy) Hydrate(v any) (any, error) { return s.hydrate(v) }

func (s *scalarStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return s.extract(v)
}

// number is satisfied by json.Number from both encoding/json and goccy.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// floatToInt truncates toward zero.
func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case number:
		f, err := x.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case number:
		f, err := x.Float64()
		return f != 0, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, true
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, true
	case reflect.String:
		b, err := strconv.ParseBool(strings.TrimSpace(rv.String()))
		return b, err == nil
	}
	return false, false
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case number:
		return x.String(), true
	case *inf.Dec:
		return x.String(), true
	case uuid.UUID:
		return x.String(), true
	case isotime.Date:
		return isotime.FormatDate(x), true
	case isotime.Time:
		return isotime.FormatTime(x), true
	case time.Time:
		return isotime.FormatDateTime(x), true
	case time.Duration:
		return isotime.FormatDuration(x), true
	case EnumValue:
		return toString(x.Value)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}

func toDecimal(v any) (*inf.Dec, bool) {
	switch x := v.(type) {
	case *inf.Dec:
		if x == nil {
			return nil, false
		}
		return new(inf.Dec).Set(x), true
	case inf.Dec:
		return new(inf.Dec).Set(&x), true
	case number:
		return new(inf.Dec).SetString(x.String())
	case bool:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return inf.NewDec(rv.Int(), 0), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(inf.Dec).SetString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return new(inf.Dec).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	case reflect.String:
		return new(inf.Dec).SetString(strings.TrimSpace(rv.String()))
	}
	return nil, false
}

func toUUID(v any) (uuid.UUID, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, true
	case string:
		u, err := uuid.Parse(x)
		return u, err == nil
	case []byte:
		u, err := uuid.FromBytes(x)
		return u, err == nil
	}
	return uuid.UUID{}, false
}

func castStrategy[T any](t *typedesc.Type, cast func(any) (T, bool)) *scalarStrategy {
	conv := func(v any) (any, error) {
		out, ok := cast(v)
		if !ok {
			return nil, errInvalidValue(t.String(), v)
		}
		return out, nil
	}
	return &scalarStrategy{t: t, hydrate: conv, extract: conv}
}

func newBytesStrategy() *scalarStrategy {
	t := typedesc.Bytes
	return &scalarStrategy{
		t: t,
		hydrate: func(v any) (any, error) {
			switch x := v.(type) {
			case []byte:
				return x, nil
			case string:
				b, err := base64.StdEncoding.DecodeString(x)
				if err != nil {
					return nil, withCause(errInvalidValue(t.String(), v), err)
				}
				return b, nil
			}
			return nil, errInvalidValue(t.String(), v)
		},
		extract: func(v any) (any, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, errInvalidValue(t.String(), v)
			}
			return base64.StdEncoding.EncodeToString(b), nil
		},
	}
}

func newDecimalStrategy() *scalarStrategy {
	t := typedesc.Decimal
	return &scalarStrategy{
		t: t,
		hydrate: func(v any) (any, error) {
			d, ok := toDecimal(v)
			if !ok {
				return nil, errInvalidValue(t.String(), v)
			}
			return d, nil
		},
		extract: func(v any) (any, error) {
			d, ok := toDecimal(v)
			if !ok {
				return nil, errInvalidValue(t.String(), v)
			}
			return d.String(), nil
		},
	}
}

func newUUIDStrategy() *scalarStrategy {
	t := typedesc.UUID
	return &scalarStrategy{
		t: t,
		hydrate: func(v any) (any, error) {
			u, ok := toUUID(v)
			if !ok {
				return nil, errInvalidValue(t.String(), v)
			}
			return u, nil
		},
		extract: func(v any) (any, error) {
			u, ok := toUUID(v)
			if !ok {
				return nil, errInvalidValue(t.String(), v)
			}
			return u.String(), nil
		},
	}
}

// temporalStrategy hydrates T from itself or from its ISO-8601 text and
// extracts to that text.
func temporalStrategy[T any](t *typedesc.Type, parse func(string) (T, error), format func(T) string, widen func(any) (T, bool)) *scalarStrategy {
	return &scalarStrategy{
		t: t,
		hydrate: func(v any) (any, error) {
			switch x := v.(type) {
			case T:
				return x, nil
			case string:
				out, err := parse(x)
				if err != nil {
					return nil, errInvalidFormat(t.String(), err)
				}
				return out, nil
			}
			if widen != nil {
				if out, ok := widen(v); ok {
					return out, nil
				}
			}
			return nil, errInvalidValue(t.String(), v)
		},
		extract: func(v any) (any, error) {
			if x, ok := v.(T); ok {
				return format(x), nil
			}
			if widen != nil {
				if x, ok := widen(v); ok {
					return format(x), nil
				}
			}
			return nil, errInvalidValue(t.String(), v)
		},
	}
}

func dateFromTime(v any) (isotime.Date, bool) {
	if tm, ok := v.(time.Time); ok {
		return isotime.DateOf(tm), true
	}
	return isotime.Date{}, false
}

func clockFromTime(v any) (isotime.Time, bool) {
	if tm, ok := v.(time.Time); ok {
		return isotime.TimeOf(tm), true
	}
	return isotime.Time{}, false
}

// builtinStrategies returns the fixed table of scalar and bare container
// strategies, keyed by descriptor key.
func builtinStrategies(r *Registry) map[string]Strategy {
	anyS := anyStrategy{r: r}
	m := map[string]Strategy{
		typedesc.Any.Key():    anyS,
		typedesc.None.Key():   noneStrategy{},
		typedesc.Bool.Key():   castStrategy(typedesc.Bool, toBool),
		typedesc.Int.Key():    castStrategy(typedesc.Int, toInt),
		typedesc.Float.Key():  castStrategy(typedesc.Float, toFloat),
		typedesc.String.Key(): castStrategy(typedesc.String, toString),
		typedesc.Bytes.Key():  newBytesStrategy(),
	}
	m[typedesc.Decimal.Key()] = newDecimalStrategy()
	m[typedesc.UUID.Key()] = newUUIDStrategy()
	m[typedesc.Date.Key()] = temporalStrategy(typedesc.Date, isotime.ParseDate, isotime.FormatDate, dateFromTime)
	m[typedesc.Time.Key()] = temporalStrategy(typedesc.Time, isotime.ParseTime, isotime.FormatTime, clockFromTime)
	m[typedesc.DateTime.Key()] = temporalStrategy(typedesc.DateTime, isotime.ParseDateTime, isotime.FormatDateTime, nil)
	m[typedesc.Duration.Key()] = temporalStrategy(typedesc.Duration, isotime.ParseDuration, isotime.FormatDuration, nil)
	for _, bare := range []*typedesc.Type{
		typedesc.List, typedesc.Sequence, typedesc.Set, typedesc.FrozenSet, typedesc.Deque,
	} {
		m[bare.Key()] = &listStrategy{t: bare, kind: bare.Kind(), elem: anyS}
	}
	m[typedesc.Tuple.Key()] = &tupleStrategy{t: typedesc.Tuple, elems: []Strategy{anyS}, variadic: true}
	m[typedesc.Dict.Key()] = &dictStrategy{t: typedesc.Dict, key: anyS, value: anyS}
	m[typedesc.OrderedDict.Key()] = &orderedDictStrategy{dictStrategy{t: typedesc.OrderedDict, key: anyS, value: anyS}}
	return m
}
