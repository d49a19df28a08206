package chisel

import (
	"github.com/reoring/chisel/codec"
	"github.com/reoring/chisel/typedesc"
)

// Decode parses data with c and hydrates the result into t.
func Decode(c codec.Codec, data []byte, t *typedesc.Type, opts ...Option) (any, error) {
	v, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return Hydrate(v, t, opts...)
}

// Encode extracts v and serializes the result with c.
func Encode(c codec.Codec, v any, opts ...Option) ([]byte, error) {
	plain, err := Extract(v, opts...)
	if err != nil {
		return nil, err
	}
	return c.Encode(plain)
}

// DecodeJSON hydrates the JSON document data into t.
func DecodeJSON(data []byte, t *typedesc.Type, opts ...Option) (any, error) {
	return Decode(codec.JSON(), data, t, opts...)
}

// EncodeJSON extracts v and writes it as JSON.
func EncodeJSON(v any, opts ...Option) ([]byte, error) {
	return Encode(codec.JSON(), v, opts...)
}

// DecodeYAML hydrates the YAML document data into t.
func DecodeYAML(data []byte, t *typedesc.Type, opts ...Option) (any, error) {
	return Decode(codec.YAML(), data, t, opts...)
}

// EncodeYAML extracts v and writes it as YAML.
func EncodeYAML(v any, opts ...Option) ([]byte, error) {
	return Encode(codec.YAML(), v, opts...)
}
