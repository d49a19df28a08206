package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML returns the YAML codec. Only the first document is decoded.
func YAML() Codec { return yamlCodec{} }

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: yaml: %w", err)
	}
	return normalize(v), nil
}

func (yamlCodec) Encode(v any) ([]byte, error) {
	b, err := yaml.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("codec: yaml: %w", err)
	}
	return b, nil
}
