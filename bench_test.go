package chisel_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/reoring/chisel"
	"github.com/reoring/chisel/codec"
	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

// --- Fixtures ---

func petsJSON(n int) []byte {
	b := &strings.Builder{}
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"name":"pet` + strconv.Itoa(i) + `","age":` + strconv.Itoa(i%20) + `,"tags":["a","b"]}`)
	}
	b.WriteByte(']')
	return []byte(b.String())
}

type benchPet struct {
	Name string   `json:"name"`
	Age  int      `json:"age"`
	Tags []string `json:"tags"`
}

// --- Dynamic records ---

func Benchmark_Hydrate_Dynamic_Pets(b *testing.B) {
	reg, pet := petSchemas(b)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	plain, err := codec.JSON().Decode(petsJSON(100))
	if err != nil {
		b.Fatal(err)
	}
	pets := typedesc.ListOf(pet)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Hydrate(plain, pets); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Extract_Dynamic_Pets(b *testing.B) {
	reg, pet := petSchemas(b)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	pets := typedesc.ListOf(pet)
	v, err := chisel.DecodeJSON(petsJSON(100), pets, chisel.WithRegistry(r))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ExtractAs(v, pets); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Struct binding ---

func Benchmark_Hydrate_Struct_Pets(b *testing.B) {
	reg := schema.NewRegistry()
	pet := typedesc.Record("Pet")
	schema.MustRegisterStruct[benchPet](reg, pet)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	plain, err := codec.JSON().Decode(petsJSON(100))
	if err != nil {
		b.Fatal(err)
	}
	pets := typedesc.ListOf(pet)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Hydrate(plain, pets); err != nil {
			b.Fatal(err)
		}
	}
}

// --- End to end ---

func Benchmark_DecodeJSON_Pets(b *testing.B) {
	reg, pet := petSchemas(b)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	data := petsJSON(100)
	pets := typedesc.ListOf(pet)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := chisel.DecodeJSON(data, pets, chisel.WithRegistry(r)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeJSON_Pets_UniqueKeys(b *testing.B) {
	reg, pet := petSchemas(b)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	data := petsJSON(100)
	pets := typedesc.ListOf(pet)
	dec := codec.JSON(codec.RejectDuplicateKeys())
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := chisel.Decode(dec, data, pets, chisel.WithRegistry(r)); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Resolution ---

func Benchmark_GetFor_Cached(b *testing.B) {
	reg, pet := petSchemas(b)
	r := chisel.NewRegistry(chisel.WithSchemas(reg))
	t := typedesc.DictOf(typedesc.String, typedesc.ListOf(pet))
	if _, err := r.GetFor(t, true); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.GetFor(t, true); err != nil {
			b.Fatal(err)
		}
	}
}
