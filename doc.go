// Package chisel converts between typed runtime values and plain values
// (nil, bool, int64, float64, string, []byte, []any, map[string]any),
// driven by type descriptors.
//
// - Type descriptors live in typedesc; record schemas in schema.
// - A Registry resolves each descriptor to a Strategy once and caches it.
// - Conversion failures are Issues carrying a code and a JSON Pointer path.
//
// Typical usage:
//
//	pet := typedesc.Record("Pet")
//	schema.DefaultRegistry().MustRegister(schema.New(pet,
//		schema.Field("name", typedesc.String),
//		schema.Field("tags", typedesc.ListOf(typedesc.String), schema.DefaultFactory(func() any { return []any{} })),
//	))
//
//	v, err := chisel.Hydrate([]any{map[string]any{"name": "Rex"}}, typedesc.ListOf(pet))
//	plain, err := chisel.Extract(v)
//
// Codecs under codec/ move plain values to and from JSON and YAML; the CLI
// lives under cmd/chisel.
package chisel
