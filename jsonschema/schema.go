// Package jsonschema projects type descriptors into JSON Schema (draft
// 2020-12) documents describing their plain values.
package jsonschema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

// ErrUnsupported is returned for descriptors without a plain JSON shape,
// such as unbound type parameters and opaque types.
var ErrUnsupported = errors.New("jsonschema: unsupported type")

// Generate returns the JSON Schema of the plain values of t. Records are
// emitted once under $defs and referenced with $ref; schemas come from p.
func Generate(t *typedesc.Type, p schema.Provider) (*jsonschema.Schema, error) {
	g := &generator{p: p, defs: jsonschema.Definitions{}, names: map[string]string{}}
	root, err := g.schema(t)
	if err != nil {
		return nil, err
	}
	root.Version = jsonschema.Version
	if len(g.defs) > 0 {
		root.Definitions = g.defs
	}
	return root, nil
}

type generator struct {
	p     schema.Provider
	defs  jsonschema.Definitions
	names map[string]string // descriptor key -> $defs name
}

func count(n int) *uint64 {
	u := uint64(n)
	return &u
}

var defName = strings.NewReplacer("[", "_", "]", "", ", ", "_", ",", "_", " ", "")

func (g *generator) schema(t *typedesc.Type) (*jsonschema.Schema, error) {
	switch t.Kind() {
	case typedesc.KindAny:
		return &jsonschema.Schema{}, nil
	case typedesc.KindNone:
		return &jsonschema.Schema{Type: "null"}, nil
	case typedesc.KindBool:
		return &jsonschema.Schema{Type: "boolean"}, nil
	case typedesc.KindInt:
		return &jsonschema.Schema{Type: "integer"}, nil
	case typedesc.KindFloat:
		return &jsonschema.Schema{Type: "number"}, nil
	case typedesc.KindString:
		return &jsonschema.Schema{Type: "string"}, nil
	case typedesc.KindBytes:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}, nil
	case typedesc.KindDecimal:
		return &jsonschema.Schema{Type: "string", Pattern: `^[+-]?(\d+(\.\d*)?|\.\d+)$`}, nil
	case typedesc.KindDate:
		return &jsonschema.Schema{Type: "string", Format: "date"}, nil
	case typedesc.KindTime:
		return &jsonschema.Schema{Type: "string", Format: "time"}, nil
	case typedesc.KindDateTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}, nil
	case typedesc.KindDuration:
		return &jsonschema.Schema{Type: "string", Format: "duration"}, nil
	case typedesc.KindUUID:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}, nil
	case typedesc.KindList, typedesc.KindSequence, typedesc.KindDeque, typedesc.KindSet, typedesc.KindFrozenSet:
		return g.array(t)
	case typedesc.KindTuple:
		return g.tuple(t)
	case typedesc.KindDict:
		return g.dict(t)
	case typedesc.KindOrderedDict:
		return g.pairs(t)
	case typedesc.KindUnion:
		return g.union(t)
	case typedesc.KindEnum:
		ms := t.Members()
		s := &jsonschema.Schema{Title: t.Name(), Enum: make([]any, len(ms))}
		for i, m := range ms {
			s.Enum[i] = m.Value
		}
		return s, nil
	case typedesc.KindNamedTuple:
		fs := t.Fields()
		s := &jsonschema.Schema{Type: "array", Title: t.Name(), MinItems: count(len(fs)), MaxItems: count(len(fs))}
		for _, f := range fs {
			item, err := g.schema(f.Type)
			if err != nil {
				return nil, err
			}
			item.Title = f.Name
			s.PrefixItems = append(s.PrefixItems, item)
		}
		return s, nil
	case typedesc.KindTypedDict:
		s := &jsonschema.Schema{Type: "object", Title: t.Name(), Properties: jsonschema.NewProperties(), AdditionalProperties: jsonschema.FalseSchema}
		for _, f := range t.Fields() {
			prop, err := g.schema(f.Type)
			if err != nil {
				return nil, err
			}
			s.Properties.Set(f.Name, prop)
		}
		return s, nil
	case typedesc.KindRecord:
		return g.record(t)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
}

func (g *generator) array(t *typedesc.Type) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Type: "array"}
	if k := t.Kind(); k == typedesc.KindSet || k == typedesc.KindFrozenSet {
		s.UniqueItems = true
	}
	if args := typedesc.Args(t); len(args) == 1 {
		items, err := g.schema(args[0])
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	return s, nil
}

func (g *generator) tuple(t *typedesc.Type) (*jsonschema.Schema, error) {
	args := typedesc.Args(t)
	s := &jsonschema.Schema{Type: "array"}
	if len(args) == 0 {
		return s, nil
	}
	fixed := args
	if typedesc.IsVariadic(t) {
		fixed = args[:len(args)-2]
		tail, err := g.schema(args[len(args)-2])
		if err != nil {
			return nil, err
		}
		s.Items = tail
		s.MinItems = count(len(fixed))
	} else {
		s.Items = jsonschema.FalseSchema
		s.MinItems = count(len(fixed))
		s.MaxItems = count(len(fixed))
	}
	for _, a := range fixed {
		as, err := g.schema(a)
		if err != nil {
			return nil, err
		}
		s.PrefixItems = append(s.PrefixItems, as)
	}
	return s, nil
}

func (g *generator) dict(t *typedesc.Type) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Type: "object"}
	if args := typedesc.Args(t); len(args) == 2 {
		vs, err := g.schema(args[1])
		if err != nil {
			return nil, err
		}
		s.AdditionalProperties = vs
	}
	return s, nil
}

// pairs describes an ordered dict, which travels as [[key, value], ...].
func (g *generator) pairs(t *typedesc.Type) (*jsonschema.Schema, error) {
	pair := &jsonschema.Schema{Type: "array", MinItems: count(2), MaxItems: count(2)}
	args := typedesc.Args(t)
	if len(args) != 2 {
		args = []*typedesc.Type{typedesc.Any, typedesc.Any}
	}
	for _, a := range args {
		as, err := g.schema(a)
		if err != nil {
			return nil, err
		}
		pair.PrefixItems = append(pair.PrefixItems, as)
	}
	return &jsonschema.Schema{Type: "array", Items: pair}, nil
}

func (g *generator) union(t *typedesc.Type) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{}
	for _, a := range typedesc.Args(t) {
		as, err := g.schema(a)
		if err != nil {
			return nil, err
		}
		s.AnyOf = append(s.AnyOf, as)
	}
	return s, nil
}

func (g *generator) defNameFor(t *typedesc.Type) string {
	if name, ok := g.names[t.Key()]; ok {
		return name
	}
	base := defName.Replace(t.String())
	name := base
	for i := 2; ; i++ {
		if _, taken := g.defs[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(i)
	}
	g.names[t.Key()] = name
	return name
}

func (g *generator) record(t *typedesc.Type) (*jsonschema.Schema, error) {
	if typedesc.IsGeneric(t) {
		return nil, fmt.Errorf("%w: generic record %s without type arguments", ErrUnsupported, t)
	}
	_, seen := g.names[t.Key()]
	name := g.defNameFor(t)
	ref := &jsonschema.Schema{Ref: "#/$defs/" + name}
	if seen {
		return ref, nil
	}
	sch, err := g.p.SchemaFor(t)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", t, err)
	}
	def := &jsonschema.Schema{Type: "object", Title: t.Name(), Properties: jsonschema.NewProperties()}
	// published before the fields so self-references resolve to the ref
	g.defs[name] = def
	bindings := typedesc.ParamsMap(t)
	for _, p := range sch.Properties() {
		ft := typedesc.Substitute(p.Type, bindings)
		fs, err := g.schema(ft)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s.%s: %w", t, p.Name, err)
		}
		if p.HasDefault {
			fs.Default = p.Default
		}
		if !p.Hydrate {
			fs.ReadOnly = true
		}
		if !p.Extract {
			fs.WriteOnly = true
		}
		def.Properties.Set(p.Name, fs)
	}
	def.Required = sch.RequiredNames()
	return ref, nil
}
