package typedesc

import (
	"fmt"
	"strings"
	"unicode"
)

// Resolver resolves non-builtin names in a type expression.
type Resolver interface {
	Lookup(name string) (*Type, bool)
}

// Scope is a map-backed Resolver.
type Scope map[string]*Type

func (s Scope) Lookup(name string) (*Type, bool) {
	t, ok := s[name]
	return t, ok
}

// ParseError reports a malformed type expression.
type ParseError struct {
	Expr   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("typedesc: %s at offset %d in %q", e.Msg, e.Offset, e.Expr)
}

var builtinNames = map[string]*Type{
	"Any": Any, "any": Any,
	"None": None, "NoneType": None,
	"bool": Bool, "int": Int, "float": Float, "str": String, "bytes": Bytes,
	"Decimal": Decimal, "date": Date, "time": Time, "datetime": DateTime,
	"timedelta": Duration, "duration": Duration, "UUID": UUID,
	"List": List, "list": List,
	"Sequence": Sequence,
	"Set": Set, "set": Set,
	"FrozenSet": FrozenSet, "frozenset": FrozenSet,
	"Deque": Deque, "deque": Deque,
	"Tuple": Tuple, "tuple": Tuple,
	"Dict": Dict, "dict": Dict,
	"OrderedDict": OrderedDict,
}

// arity of the parameterizable builtins; -1 means any number.
var builtinArity = map[*Type]int{
	List: 1, Sequence: 1, Set: 1, FrozenSet: 1, Deque: 1, Dict: 2, OrderedDict: 2, Tuple: -1,
}

// Parse reads a type expression such as "List[Dict[str, Pet]]",
// "Tuple[int, ...]" or "Optional[Box[int]]". Builtin names follow the
// Python typing spelling; every other name is looked up in r, which may be
// nil when the expression only uses builtins.
func Parse(expr string, r Resolver) (*Type, error) {
	p := &parser{src: expr, r: r}
	t, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string, r Resolver) *Type {
	t, err := Parse(expr, r)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src string
	pos int
	r   Resolver
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Expr: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *parser) ident() (string, error) {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], "...") {
		p.pos += 3
		return "...", nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	if start == p.pos {
		if p.pos == len(p.src) {
			return "", p.errorf("unexpected end of expression")
		}
		return "", p.errorf("unexpected %q", p.src[p.pos])
	}
	return p.src[start:p.pos], nil
}

func (p *parser) expr() (*Type, error) {
	p.skipSpace()
	at := p.pos
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	var args []*Type
	if p.peek('[') {
		p.pos++
		for {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek(',') {
				p.pos++
				continue
			}
			if p.peek(']') {
				p.pos++
				break
			}
			return nil, p.errorf("expected ',' or ']'")
		}
	}
	t, msg := p.build(name, args)
	if msg != "" {
		return nil, &ParseError{Expr: p.src, Offset: at, Msg: msg}
	}
	return t, nil
}

// build returns the descriptor for name[args] or a non-empty error message.
func (p *parser) build(name string, args []*Type) (*Type, string) {
	if name != "Tuple" && name != "tuple" {
		for _, a := range args {
			if a == Ellipsis {
				return nil, "ellipsis is only allowed at the end of a tuple"
			}
		}
	}
	switch name {
	case "...":
		if args != nil {
			return nil, "ellipsis takes no arguments"
		}
		return Ellipsis, ""
	case "Optional":
		if len(args) != 1 {
			return nil, "Optional takes exactly one argument"
		}
		return Optional(args[0]), ""
	case "Union":
		if len(args) == 0 {
			return nil, "Union needs at least one argument"
		}
		return UnionOf(args...), ""
	}

	t, ok := builtinNames[name]
	if !ok && p.r != nil {
		t, ok = p.r.Lookup(name)
	}
	if !ok {
		return nil, fmt.Sprintf("unknown type %q", name)
	}
	if args == nil {
		return t, ""
	}

	if n, ok := builtinArity[t]; ok {
		if n >= 0 && len(args) != n {
			return nil, fmt.Sprintf("%s takes %d type arguments, got %d", name, n, len(args))
		}
		if t == Tuple {
			for i, a := range args {
				if a == Ellipsis && (i == 0 || i != len(args)-1) {
					return nil, "ellipsis must end a tuple with at least one element"
				}
			}
		}
		return parameterize(t, args), ""
	}
	if IsGeneric(t) {
		if len(args) != len(t.params) {
			return nil, fmt.Sprintf("%s takes %d type arguments, got %d", name, len(t.params), len(args))
		}
		return Instantiate(t, args...), ""
	}
	return nil, fmt.Sprintf("%s is not parameterizable", name)
}
