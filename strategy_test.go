package chisel_test

import (
	"errors"
	"testing"
	"time"

	list "github.com/bahlo/generic-list-go"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/inf.v0"

	"github.com/reoring/chisel"
	"github.com/reoring/chisel/isotime"
	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

var decimalEqual = cmp.Comparer(func(a, b *inf.Dec) bool { return a.Cmp(b) == 0 })

func newRegistry(tb testing.TB, reg *schema.Registry) *chisel.Registry {
	tb.Helper()
	if reg == nil {
		reg = schema.NewRegistry()
	}
	return chisel.NewRegistry(chisel.WithSchemas(reg))
}

func firstIssue(t *testing.T, err error) chisel.Issue {
	t.Helper()
	require.Error(t, err)
	iss, ok := chisel.AsIssues(err)
	require.True(t, ok, "want Issues, got %T: %v", err, err)
	require.NotEmpty(t, iss)
	return iss[0]
}

func TestScalars_RoundTrip(t *testing.T) {
	r := newRegistry(t, nil)
	cases := map[string]struct {
		t     *typedesc.Type
		v     any
		plain any
	}{
		"bool":     {typedesc.Bool, true, true},
		"int":      {typedesc.Int, int64(42), int64(42)},
		"float":    {typedesc.Float, 2.5, 2.5},
		"str":      {typedesc.String, "Fido", "Fido"},
		"bytes":    {typedesc.Bytes, []byte("hi"), "aGk="},
		"decimal":  {typedesc.Decimal, inf.NewDec(1250, 2), "12.50"},
		"uuid":     {typedesc.UUID, uuid.MustParse("0b7c7a3e-2f4b-4d0e-9d7c-6c1f3d1b2a90"), "0b7c7a3e-2f4b-4d0e-9d7c-6c1f3d1b2a90"},
		"date":     {typedesc.Date, isotime.Date{Year: 2024, Month: time.February, Day: 29}, "2024-02-29"},
		"time":     {typedesc.Time, isotime.Time{Hour: 20, Minute: 20, Second: 10, Nanosecond: 1000, Zone: time.UTC}, "20:20:10.000001Z"},
		"datetime": {typedesc.DateTime, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "2024-03-01T12:30:00Z"},
		"duration": {typedesc.Duration, 26*time.Hour + 30*time.Minute, "P1DT2H30M"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			plain, err := r.ExtractAs(tc.v, tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.plain, plain)

			back, err := r.Hydrate(plain, tc.t)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.v, back, decimalEqual); diff != "" {
				t.Fatalf("hydrate(extract(v)) (-want +got):\n%s", diff)
			}

			again, err := r.ExtractAs(back, tc.t)
			require.NoError(t, err)
			assert.Equal(t, plain, again)
		})
	}
}

func TestScalars_Casts(t *testing.T) {
	r := newRegistry(t, nil)
	cases := []struct {
		t    *typedesc.Type
		in   any
		want any
	}{
		{typedesc.Int, "42", int64(42)},
		{typedesc.Int, true, int64(1)},
		{typedesc.Int, 3.9, int64(3)},
		{typedesc.Float, "2.5", 2.5},
		{typedesc.Float, int64(2), 2.0},
		{typedesc.String, int64(7), "7"},
		{typedesc.String, true, "true"},
		{typedesc.Bool, "false", false},
		{typedesc.Bool, int64(2), true},
	}
	for _, tc := range cases {
		got, err := r.Hydrate(tc.in, tc.t)
		require.NoError(t, err, "%s from %#v", tc.t, tc.in)
		assert.Equal(t, tc.want, got, "%s from %#v", tc.t, tc.in)
	}

	failures := []struct {
		t  *typedesc.Type
		in any
	}{
		{typedesc.Int, "forty"},
		{typedesc.Int, []any{1}},
		{typedesc.Float, map[string]any{}},
		{typedesc.Bool, "maybe"},
		{typedesc.Bytes, "not base64!"},
		{typedesc.Decimal, "1.2.3"},
		{typedesc.UUID, "not-a-uuid"},
		{typedesc.None, int64(0)},
	}
	for _, tc := range failures {
		_, err := r.Hydrate(tc.in, tc.t)
		assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue), "%s from %#v: %v", tc.t, tc.in, err)
	}
}

func TestTemporal(t *testing.T) {
	r := newRegistry(t, nil)

	d, err := r.Hydrate("P1W3DT2H", typedesc.Duration)
	require.NoError(t, err)
	assert.Equal(t, 10*24*time.Hour+2*time.Hour, d)
	out, err := r.ExtractAs(d, typedesc.Duration)
	require.NoError(t, err)
	assert.Equal(t, "P1W3DT2H", out)

	v, err := r.Hydrate("20:20:10.000001Z", typedesc.Time)
	require.NoError(t, err)
	clock := v.(isotime.Time)
	assert.Equal(t, 20, clock.Hour)
	assert.Equal(t, 20, clock.Minute)
	assert.Equal(t, 10, clock.Second)
	assert.Equal(t, 1, clock.Microsecond())
	off, ok := clock.Offset()
	assert.True(t, ok)
	assert.Zero(t, off)

	// A datetime widens into date and time.
	when := time.Date(2023, 7, 4, 9, 15, 0, 0, time.UTC)
	out, err = r.ExtractAs(when, typedesc.Date)
	require.NoError(t, err)
	assert.Equal(t, "2023-07-04", out)

	for _, tt := range []*typedesc.Type{typedesc.Date, typedesc.Time, typedesc.DateTime, typedesc.Duration} {
		_, err := r.Hydrate("yesterday", tt)
		it := firstIssue(t, err)
		assert.Equal(t, chisel.CodeInvalidFormat, it.Code, tt.String())
		assert.ErrorIs(t, err, isotime.ErrInvalidFormat)
	}
}

func TestRecord_RequiredProperty(t *testing.T) {
	reg := schema.NewRegistry()
	dog := typedesc.Record("Dog")
	reg.MustRegister(schema.New(dog,
		schema.Field("name", typedesc.String),
		schema.Field("age", typedesc.Int),
	))
	r := newRegistry(t, reg)

	_, err := r.Hydrate(map[string]any{"name": "Fido"}, dog)
	it := firstIssue(t, err)
	assert.Equal(t, chisel.CodeRequired, it.Code)
	assert.Equal(t, "/age", it.Path)
	assert.Contains(t, err.Error(), "age")

	_, err = r.Hydrate([]any{map[string]any{"name": "Fido", "age": 3}, map[string]any{"name": "Rex", "age": "old"}}, typedesc.ListOf(dog))
	it = firstIssue(t, err)
	assert.Equal(t, chisel.CodeInvalidValue, it.Code)
	assert.Equal(t, "/1/age", it.Path)

	_, err = r.Hydrate("Fido", dog)
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue))
}

func TestRecord_DefaultsAndFactories(t *testing.T) {
	reg := schema.NewRegistry()
	pet := typedesc.Record("Pet")
	calls := 0
	reg.MustRegister(schema.New(pet,
		schema.Field("name", typedesc.String),
		schema.Field("tags", typedesc.ListOf(typedesc.String), schema.DefaultFactory(func() any {
			calls++
			return []any{}
		})),
		schema.Field("labels", typedesc.DictOf(typedesc.String, typedesc.String), schema.DefaultFactory(func() any { return map[string]any{} })),
		schema.Field("legs", typedesc.Int, schema.Default(int64(4))),
		schema.Field("nickname", typedesc.Optional(typedesc.String)),
	))
	r := newRegistry(t, reg)

	a, err := r.Hydrate(map[string]any{"name": "Rex"}, pet)
	require.NoError(t, err)
	b, err := r.Hydrate(map[string]any{"name": "Tom"}, pet)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "the factory runs once per hydration")

	ra, rb := a.(*schema.Object), b.(*schema.Object)
	tags, _ := ra.Get("tags")
	assert.Equal(t, []any{}, tags)
	legs, _ := ra.Get("legs")
	assert.Equal(t, int64(4), legs)
	nick, ok := ra.Get("nickname")
	assert.True(t, ok)
	assert.Nil(t, nick)

	la, _ := ra.Get("labels")
	la.(map[string]any)["owner"] = "ann"
	lb, _ := rb.Get("labels")
	assert.Empty(t, lb, "factory values are not shared between instances")
}

func TestRecord_RoundTrip(t *testing.T) {
	reg, pet := petSchemas(t)
	r := newRegistry(t, reg)
	in := map[string]any{"name": "Rex", "age": int64(3), "tags": []any{"good", "loud"}}

	v, err := r.Hydrate(in, pet)
	require.NoError(t, err)
	plain, err := r.Extract(v)
	require.NoError(t, err)
	if diff := cmp.Diff(in, plain); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
	back, err := r.Hydrate(plain, pet)
	require.NoError(t, err)
	again, err := r.Extract(back)
	require.NoError(t, err)
	assert.Equal(t, plain, again)

	// Unknown keys are ignored by records.
	_, err = r.Hydrate(map[string]any{"name": "Rex", "age": 1, "owner": "ann"}, pet)
	assert.NoError(t, err)

	_, err = r.ExtractAs(schema.NewObject(typedesc.Record("Pet")), pet)
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue), "an object of another record declaration")
}

func TestRecord_InheritanceAndHooks(t *testing.T) {
	reg := schema.NewRegistry()
	animal := typedesc.Record("Animal")
	base := reg.MustRegister(schema.New(animal,
		schema.Field("name", typedesc.String),
		schema.Field("sound", typedesc.String, schema.Default("...")),
	))
	dog := typedesc.Record("Dog")
	reg.MustRegister(schema.Extend(dog, base,
		schema.Field("sound", typedesc.String, schema.Default("woof")),
		schema.Field("shout", typedesc.String, schema.ExtractOnly()),
		schema.Field("secret", typedesc.Optional(typedesc.String), schema.HydrateOnly()),
	).WithPostInit(func(inst any) error {
		o := inst.(*schema.Object)
		sound, _ := o.Get("sound")
		if sound == "" {
			return errors.New("a dog must make a sound")
		}
		o.Set("shout", sound.(string)+"!")
		return nil
	}))
	r := newRegistry(t, reg)

	v, err := r.Hydrate(map[string]any{"name": "Rex", "shout": "ignored", "secret": "bone"}, dog)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "sound", "secret", "shout"}, v.(*schema.Object).Keys())

	out, err := r.Extract(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Rex", "sound": "woof", "shout": "woof!"}, out)

	_, err = r.Hydrate(map[string]any{"name": "Rex", "sound": ""}, dog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a dog must make a sound")
}

func TestRecord_ExtractPolicy(t *testing.T) {
	reg := schema.NewRegistry()
	pet := typedesc.Record("Pet")
	reg.MustRegister(schema.New(pet,
		schema.Field("name", typedesc.String),
		schema.Field("nickname", typedesc.Optional(typedesc.String)),
		schema.Field("tags", typedesc.ListOf(typedesc.String), schema.DefaultFactory(func() any { return []any{} })),
	))
	obj := schema.NewObject(pet)
	obj.Set("name", "Rex")

	omit := chisel.NewRegistry(chisel.WithSchemas(reg))
	out, err := omit.Extract(obj)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Rex", "tags": []any{}}, out, "absent fields are omitted, defaults fill in")

	null := chisel.NewRegistry(chisel.WithSchemas(reg), chisel.WithExtractPolicy(chisel.ExtractAbsentAsNull))
	out, err = null.Extract(obj)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Rex", "nickname": nil, "tags": []any{}}, out)

	// An explicit null is a value under both policies.
	obj.Set("nickname", nil)
	out, err = omit.Extract(obj)
	require.NoError(t, err)
	assert.Contains(t, out, "nickname")
}

func TestOptional(t *testing.T) {
	r := newRegistry(t, nil)
	oi := typedesc.Optional(typedesc.Int)

	v, err := r.Hydrate(nil, oi)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Hydrate("5", oi)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = r.Extract(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	// Optional of optional collapses.
	v, err = r.Hydrate(nil, typedesc.Optional(oi))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = r.Hydrate("five", oi)
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue))
}

func TestUnion_Records(t *testing.T) {
	reg := schema.NewRegistry()
	pet := typedesc.Record("Pet")
	person := typedesc.Record("Person")
	reg.MustRegister(schema.New(pet,
		schema.Field("name", typedesc.String),
		schema.Field("age", typedesc.Int),
	))
	reg.MustRegister(schema.New(person,
		schema.Field("name", typedesc.String),
		schema.Field("age", typedesc.Int),
		schema.Field("address", typedesc.String),
	))
	r := newRegistry(t, reg)

	for _, u := range []*typedesc.Type{typedesc.UnionOf(pet, person), typedesc.UnionOf(person, pet)} {
		t.Run(u.String(), func(t *testing.T) {
			v, err := r.Hydrate(map[string]any{"name": "Fido", "age": 3}, u)
			require.NoError(t, err)
			assert.Equal(t, "Pet", v.(*schema.Object).TypeDescriptor().Name())

			v, err = r.Hydrate(map[string]any{"name": "Bob", "age": 3, "address": "X"}, u)
			require.NoError(t, err)
			assert.Equal(t, "Person", v.(*schema.Object).TypeDescriptor().Name())

			out, err := r.ExtractAs(v, u)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"name": "Bob", "age": int64(3), "address": "X"}, out)

			_, err = r.Hydrate(map[string]any{"name": "Bob"}, u)
			assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue))
		})
	}
}

func TestUnion_ExtractOnlyKeys(t *testing.T) {
	reg := schema.NewRegistry()
	plain := typedesc.Record("Plain")
	labeled := typedesc.Record("Labeled")
	reg.MustRegister(schema.New(plain, schema.Field("name", typedesc.String)))
	reg.MustRegister(schema.New(labeled,
		schema.Field("name", typedesc.String),
		schema.Field("label", typedesc.String, schema.ExtractOnly()),
	).WithPostInit(func(inst any) error {
		o := inst.(*schema.Object)
		name, _ := o.Get("name")
		o.Set("label", "<"+name.(string)+">")
		return nil
	}))
	r := newRegistry(t, reg)
	u := typedesc.UnionOf(plain, labeled)

	v, err := r.Hydrate(map[string]any{"name": "a"}, labeled)
	require.NoError(t, err)
	out, err := r.ExtractAs(v, u)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "a", "label": "<a>"}, out)

	back, err := r.Hydrate(out, u)
	require.NoError(t, err)
	assert.Equal(t, "Labeled", back.(*schema.Object).TypeDescriptor().Name())
}

func TestUnion_Scalars(t *testing.T) {
	r := newRegistry(t, nil)

	intOrStr := typedesc.UnionOf(typedesc.Int, typedesc.String)
	v, err := r.Hydrate("5", intOrStr)
	require.NoError(t, err)
	assert.Equal(t, "5", v, "the exact scalar kind wins")
	v, err = r.Hydrate(int64(5), intOrStr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	intOrFloat := typedesc.UnionOf(typedesc.Int, typedesc.Float)
	v, err = r.Hydrate("2.5", intOrFloat)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v, "scalar alternatives are tried in order")
	v, err = r.Hydrate("2", intOrFloat)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	orList := typedesc.UnionOf(typedesc.Int, typedesc.ListOf(typedesc.Int))
	v, err = r.Hydrate([]any{"1", 2}, orList)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	_, err = r.Hydrate(map[string]any{}, typedesc.UnionOf(typedesc.Int, typedesc.Bool))
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue))

	out, err := r.ExtractAs(true, typedesc.UnionOf(typedesc.Int, typedesc.Bool))
	require.NoError(t, err)
	assert.Equal(t, true, out, "extraction keeps the runtime scalar kind")
}

func TestTuple(t *testing.T) {
	r := newRegistry(t, nil)

	v, err := r.Hydrate([]any{1, 2, 3, 4}, typedesc.TupleOf(typedesc.Int, typedesc.Ellipsis))
	require.NoError(t, err)
	assert.Equal(t, chisel.Tuple{int64(1), int64(2), int64(3), int64(4)}, v)

	v, err = r.Hydrate([]any{"a", "1", "2.1", "True"}, typedesc.TupleOf(typedesc.String, typedesc.Ellipsis))
	require.NoError(t, err)
	assert.Equal(t, chisel.Tuple{"a", "1", "2.1", "True"}, v)

	v, err = r.Hydrate([]any{"a", 1, 2.1, true}, typedesc.TupleOf(typedesc.String, typedesc.Ellipsis))
	require.NoError(t, err)
	assert.Equal(t, chisel.Tuple{"a", "1", "2.1", "true"}, v)

	head := typedesc.TupleOf(typedesc.String, typedesc.Int, typedesc.Ellipsis)
	v, err = r.Hydrate([]any{"a"}, head)
	require.NoError(t, err)
	assert.Equal(t, chisel.Tuple{"a"}, v, "the variadic tail may be empty")
	_, err = r.Hydrate([]any{}, head)
	assert.Equal(t, "too_short", firstIssue(t, err).Params["reason"])

	pair := typedesc.TupleOf(typedesc.Int, typedesc.String)
	v, err = r.Hydrate([]any{1, 2}, pair)
	require.NoError(t, err)
	assert.Equal(t, chisel.Tuple{int64(1), "2"}, v)
	out, err := r.ExtractAs(v, pair)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "2"}, out)

	_, err = r.Hydrate([]any{1}, pair)
	it := firstIssue(t, err)
	assert.Equal(t, chisel.CodeInvalidValue, it.Code)
	assert.Equal(t, "too_short", it.Params["reason"])
	_, err = r.Hydrate([]any{1, "a", 2}, pair)
	assert.Equal(t, "too_long", firstIssue(t, err).Params["reason"])

	_, err = r.Hydrate([]any{"x", "a"}, pair)
	assert.Equal(t, "/0", firstIssue(t, err).Path)
}

func TestNamedTuple(t *testing.T) {
	point := typedesc.NamedTupleType("Point",
		typedesc.Field{Name: "x", Type: typedesc.Int},
		typedesc.Field{Name: "y", Type: typedesc.Int},
	)
	r := newRegistry(t, nil)

	v, err := r.Hydrate([]any{1, "2"}, point)
	require.NoError(t, err)
	nt := v.(*chisel.NamedTuple)
	y, ok := nt.Get("y")
	require.True(t, ok)
	assert.Equal(t, int64(2), y)

	out, err := r.Extract(nt)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, out)

	_, err = r.Hydrate([]any{1}, point)
	assert.Equal(t, "too_short", firstIssue(t, err).Params["reason"])
}

func TestCollections(t *testing.T) {
	r := newRegistry(t, nil)

	_, err := r.Hydrate([]any{1, "x"}, typedesc.ListOf(typedesc.Int))
	assert.Equal(t, "/1", firstIssue(t, err).Path)

	v, err := r.Hydrate([]any{2, 1, "2"}, typedesc.SetOf(typedesc.Int))
	require.NoError(t, err)
	assert.Equal(t, chisel.NewSet(int64(1), int64(2)), v)
	out, err := r.ExtractAs(v, typedesc.SetOf(typedesc.Int))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, out)

	v, err = r.Hydrate([]any{"a"}, typedesc.FrozenSetOf(typedesc.String))
	require.NoError(t, err)
	assert.True(t, v.(chisel.FrozenSet).Has("a"))

	_, err = r.Hydrate([]any{[]any{1}}, typedesc.SetOf(typedesc.Any))
	assert.Equal(t, "/0", firstIssue(t, err).Path, "set elements must be hashable")

	v, err = r.Hydrate([]any{"a", "b"}, typedesc.DequeOf(typedesc.String))
	require.NoError(t, err)
	dq := v.(*list.List[any])
	assert.Equal(t, 2, dq.Len())
	assert.Equal(t, "a", dq.Front().Value)
	out, err = r.Extract(dq)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, out)

	// Bare containers only cast the container.
	v, err = r.Hydrate([]any{"a", int64(1)}, typedesc.List)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", int64(1)}, v)
	v, err = r.Hydrate(chisel.NewSet("x"), typedesc.List)
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, v)

	_, err = r.Hydrate("abc", typedesc.ListOf(typedesc.String))
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue), "strings are not sequences")
}

func TestDicts(t *testing.T) {
	r := newRegistry(t, nil)

	v, err := r.Hydrate(map[string]any{"a": "1", "b": 2}, typedesc.DictOf(typedesc.String, typedesc.Int))
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"a": int64(1), "b": int64(2)}, v)

	_, err = r.Hydrate(map[string]any{"a": 1, "b": "x"}, typedesc.DictOf(typedesc.String, typedesc.Int))
	assert.Equal(t, "/b", firstIssue(t, err).Path)

	byID := typedesc.DictOf(typedesc.Int, typedesc.String)
	v, err = r.Hydrate(map[string]any{"1": "one", "2": "two"}, byID)
	require.NoError(t, err)
	assert.Equal(t, map[any]any{int64(1): "one", int64(2): "two"}, v)
	out, err := r.ExtractAs(v, byID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "one", "2": "two"}, out)
}

func TestOrderedDict(t *testing.T) {
	r := newRegistry(t, nil)
	om := chisel.NewOrderedDict([2]any{"a", int64(1)}, [2]any{"b", int64(2)}, [2]any{"c", int64(3)})

	out, err := r.Extract(om)
	require.NoError(t, err)
	want := []any{[]any{"a", int64(1)}, []any{"b", int64(2)}, []any{"c", int64(3)}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}

	od := typedesc.OrderedDictOf(typedesc.String, typedesc.Int)
	v, err := r.Hydrate(out, od)
	require.NoError(t, err)
	back := v.(*orderedmap.OrderedMap[any, any])
	var keys []any
	for p := back.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []any{"a", "b", "c"}, keys)
	c, _ := back.Get("c")
	assert.Equal(t, int64(3), c)

	again, err := r.ExtractAs(back, od)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = r.Hydrate([]any{[]any{"a"}}, od)
	assert.Equal(t, "/0", firstIssue(t, err).Path)
	_, err = r.Hydrate([]any{[]any{"a", 1}, []any{"b", "x"}}, od)
	assert.Equal(t, "/1/b", firstIssue(t, err).Path)
}

func TestTypedDict(t *testing.T) {
	movie := typedesc.TypedDictType("Movie",
		typedesc.Field{Name: "title", Type: typedesc.String},
		typedesc.Field{Name: "year", Type: typedesc.Int},
	)
	r := newRegistry(t, nil)

	v, err := r.Hydrate(map[string]any{"title": "Up", "year": "2009"}, movie)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Up", "year": int64(2009)}, v)

	v, err = r.Hydrate(map[string]any{"title": "Up"}, movie)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Up"}, v, "declared keys may be missing")

	_, err = r.Hydrate(map[string]any{"title": "Up", "rating": 5}, movie)
	it := firstIssue(t, err)
	assert.Equal(t, chisel.CodeInvalidValue, it.Code)
	assert.Equal(t, "unknown_key", it.Params["reason"])
	assert.Equal(t, "/rating", it.Path)
}

func TestEnum(t *testing.T) {
	color := typedesc.Enum("Color",
		typedesc.Member{Name: "RED", Value: "red"},
		typedesc.Member{Name: "GREEN", Value: "green"},
	)
	level := typedesc.Enum("Level",
		typedesc.Member{Name: "LOW", Value: int64(1)},
		typedesc.Member{Name: "HIGH", Value: int64(2)},
	)
	r := newRegistry(t, nil)

	_, err := r.Hydrate("silver", color)
	assert.Equal(t, chisel.CodeInvalidValue, firstIssue(t, err).Code)

	v, err := r.Hydrate("red", color)
	require.NoError(t, err)
	assert.Equal(t, chisel.EnumValue{Type: color, Name: "RED", Value: "red"}, v)
	out, err := r.Extract(v)
	require.NoError(t, err)
	assert.Equal(t, "red", out)

	v, err = r.Hydrate(2.0, level)
	require.NoError(t, err)
	assert.Equal(t, "HIGH", v.(chisel.EnumValue).Name)

	_, err = r.ExtractAs(chisel.EnumValue{Type: color, Name: "RED", Value: "red"}, level)
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue), "members of another enum")
	_, err = r.Hydrate([]any{"red"}, color)
	assert.True(t, chisel.HasCode(err, chisel.CodeInvalidValue))
}

func TestAny(t *testing.T) {
	reg, pet := petSchemas(t)
	r := newRegistry(t, reg)

	in := []any{int64(1), "x", map[string]any{"k": []any{true}}}
	v, err := r.Hydrate(in, typedesc.Any)
	require.NoError(t, err)
	assert.Equal(t, in, v)

	obj, err := r.Hydrate(map[string]any{"name": "Rex", "age": 1}, pet)
	require.NoError(t, err)
	out, err := r.ExtractAs(map[string]any{"pet": obj, "when": isotime.Date{Year: 2020, Month: 1, Day: 2}}, typedesc.DictOf(typedesc.String, typedesc.Any))
	require.NoError(t, err)
	want := map[string]any{
		"pet":  map[string]any{"name": "Rex", "age": int64(1), "tags": []any{}},
		"when": "2020-01-02",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}
