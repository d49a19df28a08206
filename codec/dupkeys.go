package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrDuplicateKey is returned by a JSON codec built with
// RejectDuplicateKeys when an object repeats a key.
var ErrDuplicateKey = errors.New("codec: duplicate key")

// JSONOption configures the JSON codec.
type JSONOption func(*jsonCodec)

// RejectDuplicateKeys makes Decode fail on objects that repeat a key
// instead of keeping the last value.
func RejectDuplicateKeys() JSONOption {
	return func(c *jsonCodec) { c.rejectDup = true }
}

type frame struct {
	object bool
	keys   map[string]struct{}
	// expectKey is true when the next string token of an object is a key.
	expectKey bool
	key       string
	index     int
	path      string
}

func (f *frame) child() string {
	if f.object {
		return f.path + "/" + escapePointer(f.key)
	}
	return f.path + "/" + strconv.Itoa(f.index)
}

// valueDone advances the frame past one member value.
func (f *frame) valueDone() {
	if f.object {
		f.expectKey = true
	} else {
		f.index++
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }

// checkDuplicateKeys walks the tokens of data and reports the first
// repeated key with the JSON Pointer of its object.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []*frame
	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// syntax errors are reported by the real decode
			return nil
		}
		parent := top()
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				path := ""
				if parent != nil {
					path = parent.child()
				}
				f := &frame{object: v == '{', path: path, expectKey: v == '{'}
				if f.object {
					f.keys = map[string]struct{}{}
				}
				stack = append(stack, f)
			case '}', ']':
				stack = stack[:len(stack)-1]
				if p := top(); p != nil {
					p.valueDone()
				}
			}
		case string:
			if parent != nil && parent.object && parent.expectKey {
				if _, dup := parent.keys[v]; dup {
					at := parent.path
					if at == "" {
						at = "/"
					}
					return fmt.Errorf("%w %q at %s", ErrDuplicateKey, v, at)
				}
				parent.keys[v] = struct{}{}
				parent.key = v
				parent.expectKey = false
				continue
			}
			if parent != nil {
				parent.valueDone()
			}
		default:
			if parent != nil {
				parent.valueDone()
			}
		}
	}
}
