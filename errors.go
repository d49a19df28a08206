package chisel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/chisel/i18n"
)

// Issue codes.
const (
	// CodeUnsupportedType: no strategy exists for the requested type.
	CodeUnsupportedType = "unsupported_type"
	// CodeInvalidType: the type cannot be converted as requested, such as an
	// uninstantiated generic record or a record without a schema.
	CodeInvalidType = "invalid_type"
	// CodeRequired: a required record property is absent.
	CodeRequired = "required"
	// CodeInvalidValue: a value does not fit the target type.
	CodeInvalidValue = "invalid_value"
	// CodeInvalidFormat: a temporal string does not match its layout.
	CodeInvalidFormat = "invalid_format"
)

// Issue is a single conversion failure.
type Issue struct {
	Path    string // JSON Pointer into the plain value (for example: /pets/2/age).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: the type or property involved.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"want":"int", "got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of conversion failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /age: required property missing: age
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": " + it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so that errors.Is sees through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// newIssue builds a root-level issue whose message is localized via i18n.
func newIssue(code, subject string, kv ...any) Issue {
	it := Root().Issue(code, "", kv...)
	data := map[string]string{"subject": subject}
	for k, v := range it.Params {
		data[k] = fmt.Sprint(v)
	}
	it.Message = i18n.T(code, data)
	it.Hint = subject
	return it
}

func errUnsupported(t fmt.Stringer) error {
	return Issues{newIssue(CodeUnsupportedType, t.String(), "type", t.String())}
}

func errInvalidType(t fmt.Stringer, reason string) error {
	return Issues{newIssue(CodeInvalidType, t.String()+" ("+reason+")", "type", t.String())}
}

func errRequired(name string) error {
	return Issues{newIssue(CodeRequired, name, "property", name)}
}

// errInvalidValue reports that got cannot be converted to want.
func errInvalidValue(want string, got any, kv ...any) error {
	it := newIssue(CodeInvalidValue, fmt.Sprintf("%s from %s", want, describe(got)), append([]any{"want", want, "got", describe(got)}, kv...)...)
	return Issues{it}
}

// errInvalidReason is an invalid_value issue whose message names a more
// specific reason such as too_short or unknown_key.
func errInvalidReason(reason, want string, got any, kv ...any) error {
	iss := errInvalidValue(want, got, append([]any{"reason", reason}, kv...)...).(Issues)
	iss[0].Message = i18n.T(reason, map[string]string{"subject": want})
	return iss
}

func errInvalidFormat(want string, cause error) error {
	it := newIssue(CodeInvalidFormat, want, "want", want)
	it.Cause = cause
	return Issues{it}
}

// withCause attaches cause to every issue of err.
func withCause(err, cause error) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	for i := range iss {
		if iss[i].Cause == nil {
			iss[i].Cause = cause
		}
	}
	return iss
}

func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		if len(v) > 32 {
			v = v[:32] + "..."
		}
		return fmt.Sprintf("%T %q", v, v)
	default:
		return fmt.Sprintf("%T", v)
	}
}

// rebase moves the issues of err under the path segment built by at.
// Errors that are not Issues become an invalid_value issue at that segment.
func rebase(err error, at PathRef) error {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		it := at.Issue(CodeInvalidValue, err.Error())
		it.Cause = err
		return Issues{it}
	}
	prefix := at.Pointer()
	out := make(Issues, len(iss))
	for i, it := range iss {
		switch {
		case prefix == "/":
		case it.Path == "/" || it.Path == "":
			it.Path = prefix
		default:
			it.Path = prefix + it.Path
		}
		out[i] = it
	}
	return out
}

func atKey(err error, key string) error { return rebase(err, Root().Field(key)) }

func atIndex(err error, i int) error { return rebase(err, Root().Index(i)) }
