package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/goccy/go-json"
)

// JSON returns the JSON codec. Numbers decode to int64 when integral and
// float64 otherwise.
func JSON(opts ...JSONOption) Codec {
	c := jsonCodec{}
	for _, o := range opts {
		o(&c)
	}
	return c
}

type jsonCodec struct {
	rejectDup bool
}

func (jsonCodec) Name() string { return "json" }

func (c jsonCodec) Decode(data []byte) (any, error) {
	if c.rejectDup {
		if err := checkDuplicateKeys(data); err != nil {
			return nil, err
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: json: trailing data after document")
	}
	return numbers(v), nil
}

func (jsonCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("codec: json: %w", err)
	}
	return b, nil
}

// numbers replaces json.Number leaves with int64 or float64.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, vv := range x {
			x[k] = numbers(vv)
		}
		return x
	case []any:
		for i := range x {
			x[i] = numbers(x[i])
		}
		return x
	}
	return v
}

// CanonicalJSON returns a JSON codec whose output is canonicalized per
// RFC 8785 (JCS): sorted keys, no insignificant whitespace, normalized
// numbers.
func CanonicalJSON() Codec { return canonicalCodec{} }

type canonicalCodec struct{ jsonCodec }

func (canonicalCodec) Name() string { return "canonical-json" }

func (c canonicalCodec) Encode(v any) ([]byte, error) {
	b, err := c.jsonCodec.Encode(v)
	if err != nil {
		return nil, err
	}
	out, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return nil, fmt.Errorf("codec: canonical json: %w", err)
	}
	return out, nil
}
