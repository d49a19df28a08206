// Package codec transcodes between wire formats and the plain value model
// (nil, bool, int64, float64, string, []byte, []any, map[string]any).
package codec

import (
	"fmt"
	"math"
	"strings"
)

// Codec decodes a document into a plain value and encodes a plain value
// into a document.
type Codec interface {
	Name() string
	Decode(data []byte) (any, error)
	Encode(v any) ([]byte, error)
}

// ByName returns the codec called name: json, yaml (or yml) and
// canonical-json (or jcs).
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON(), nil
	case "yaml", "yml":
		return YAML(), nil
	case "canonical-json", "jcs":
		return CanonicalJSON(), nil
	}
	return nil, fmt.Errorf("codec: unknown format %q", name)
}

// normalize rewrites decoder output into the plain value model: integers
// become int64, maps get string keys.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = normalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uintToPlain(uint64(x))
	case uint64:
		return uintToPlain(x)
	case float32:
		return float64(x)
	}
	return v
}

func uintToPlain(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}
