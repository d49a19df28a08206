// Package yamldef loads record, enum, named tuple and typed dict
// declarations from YAML.
//
//	records:
//	  Pet:
//	    fields:
//	      - {name: name, type: str}
//	      - {name: tags, type: "List[str]", default: []}
//	  Dog:
//	    extends: Pet
//	    fields:
//	      - {name: good, type: bool, default: true}
//	  Box:
//	    params: [T]
//	    fields:
//	      - {name: item, type: T}
//	enums:
//	  Color: {red: r, green: g}
//	named_tuples:
//	  Point: [{name: x, type: int}, {name: y, type: int}]
//	typed_dicts:
//	  Movie: [{name: title, type: str}, {name: year, type: int}]
//
// Records may reference each other in any order. Named tuples and typed
// dicts may reference records, enums and earlier named tuples or typed
// dicts.
package yamldef

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

// Defs is the result of loading a definitions document.
type Defs struct {
	// Scope resolves every declared name.
	Scope typedesc.Scope
	// Schemas holds the schema of every declared record.
	Schemas *schema.Registry
}

// Lookup implements typedesc.Resolver.
func (d *Defs) Lookup(name string) (*typedesc.Type, bool) { return d.Scope.Lookup(name) }

// Parse reads a type expression against the declared names.
func (d *Defs) Parse(expr string) (*typedesc.Type, error) { return typedesc.Parse(expr, d.Scope) }

type document struct {
	Records     yaml.Node `yaml:"records"`
	Enums       yaml.Node `yaml:"enums"`
	NamedTuples yaml.Node `yaml:"named_tuples"`
	TypedDicts  yaml.Node `yaml:"typed_dicts"`
}

type recordDoc struct {
	Params  []string   `yaml:"params"`
	Extends string     `yaml:"extends"`
	Fields  []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name    string     `yaml:"name"`
	Type    string     `yaml:"type"`
	Default yaml.Node `yaml:"default"`
	Hydrate *bool     `yaml:"hydrate"`
	Extract *bool     `yaml:"extract"`
}

// Load parses a definitions document. Schemas are registered in a fresh
// schema.Registry.
func Load(data []byte) (*Defs, error) {
	return LoadInto(data, schema.NewRegistry())
}

// LoadInto is Load registering schemas in reg.
func LoadInto(data []byte, reg *schema.Registry) (*Defs, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamldef: %w", err)
	}
	l := &loader{
		defs:    &Defs{Scope: typedesc.Scope{}, Schemas: reg},
		records: map[string]*recordDoc{},
		built:   map[string]*schema.Schema{},
		pending: map[string]bool{},
	}
	steps := []func(*document) error{l.declareRecords, l.declareEnums, l.buildRecords, l.declareNamedTuples, l.declareTypedDicts}
	for _, step := range steps {
		if err := step(&doc); err != nil {
			return nil, err
		}
	}
	return l.defs, nil
}

type loader struct {
	defs    *Defs
	order   []string
	records map[string]*recordDoc
	built   map[string]*schema.Schema
	pending map[string]bool
}

// pairs walks a YAML mapping in document order. A missing section is empty.
func pairs(n *yaml.Node, section string, fn func(key string, value *yaml.Node) error) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("yamldef: %s: line %d: want a mapping", section, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) declare(name string, t *typedesc.Type, line int) error {
	if _, dup := l.defs.Scope[name]; dup {
		return fmt.Errorf("yamldef: line %d: %s is declared twice", line, name)
	}
	l.defs.Scope[name] = t
	return nil
}

func (l *loader) declareRecords(doc *document) error {
	return pairs(&doc.Records, "records", func(name string, v *yaml.Node) error {
		var rd recordDoc
		if err := v.Decode(&rd); err != nil {
			return fmt.Errorf("yamldef: record %s: %w", name, err)
		}
		params := make([]*typedesc.Type, len(rd.Params))
		for i, p := range rd.Params {
			params[i] = typedesc.Param(p)
		}
		l.records[name] = &rd
		l.order = append(l.order, name)
		return l.declare(name, typedesc.Record(name, params...), v.Line)
	})
}

func (l *loader) declareEnums(doc *document) error {
	return pairs(&doc.Enums, "enums", func(name string, v *yaml.Node) error {
		var members []typedesc.Member
		switch v.Kind {
		case yaml.MappingNode:
			err := pairs(v, "enums", func(member string, mv *yaml.Node) error {
				val, err := plainValue(mv)
				if err != nil {
					return err
				}
				members = append(members, typedesc.Member{Name: member, Value: val})
				return nil
			})
			if err != nil {
				return fmt.Errorf("yamldef: enum %s: %w", name, err)
			}
		case yaml.SequenceNode:
			for _, mv := range v.Content {
				members = append(members, typedesc.Member{Name: mv.Value, Value: mv.Value})
			}
		default:
			return fmt.Errorf("yamldef: enum %s: line %d: want a mapping or a list", name, v.Line)
		}
		return l.declare(name, typedesc.Enum(name, members...), v.Line)
	})
}

func (l *loader) buildRecords(*document) error {
	for _, name := range l.order {
		if _, err := l.buildRecord(name); err != nil {
			return err
		}
	}
	return nil
}

// buildRecord registers the schema of name after the schema it extends.
func (l *loader) buildRecord(name string) (*schema.Schema, error) {
	if s, ok := l.built[name]; ok {
		return s, nil
	}
	if l.pending[name] {
		return nil, fmt.Errorf("yamldef: record %s extends itself", name)
	}
	l.pending[name] = true
	rd := l.records[name]
	t := l.defs.Scope[name]

	var base *schema.Schema
	if rd.Extends != "" {
		if _, ok := l.records[rd.Extends]; !ok {
			return nil, fmt.Errorf("yamldef: record %s extends unknown record %s", name, rd.Extends)
		}
		b, err := l.buildRecord(rd.Extends)
		if err != nil {
			return nil, err
		}
		base = b
	}

	scope := typedesc.Scope{}
	for k, v := range l.defs.Scope {
		scope[k] = v
	}
	for _, p := range t.Params() {
		scope[p.Name()] = p
	}
	props := make([]*schema.Property, 0, len(rd.Fields))
	for _, fd := range rd.Fields {
		p, err := buildField(fd, scope)
		if err != nil {
			return nil, fmt.Errorf("yamldef: record %s: %w", name, err)
		}
		props = append(props, p)
	}
	s := schema.Extend(t, base, props...)
	if err := l.defs.Schemas.Register(s); err != nil {
		return nil, fmt.Errorf("yamldef: %w", err)
	}
	l.built[name] = s
	return s, nil
}

func buildField(fd fieldDoc, scope typedesc.Scope) (*schema.Property, error) {
	if fd.Name == "" {
		return nil, errors.New("field without a name")
	}
	ft, err := typedesc.Parse(fd.Type, scope)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fd.Name, err)
	}
	var opts []schema.Option
	// A zero Kind means the key was absent; "default: null" is a scalar.
	if fd.Default.Kind != 0 {
		dv, err := plainValue(&fd.Default)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		switch dv.(type) {
		case []any, map[string]any:
			opts = append(opts, schema.DefaultFactory(func() any { return deepCopy(dv) }))
		default:
			opts = append(opts, schema.Default(dv))
		}
	}
	if fd.Hydrate != nil && !*fd.Hydrate {
		opts = append(opts, schema.ExtractOnly())
	}
	if fd.Extract != nil && !*fd.Extract {
		opts = append(opts, schema.HydrateOnly())
	}
	return schema.Field(fd.Name, ft, opts...), nil
}

func (l *loader) fieldList(kind, name string, v *yaml.Node) ([]typedesc.Field, error) {
	var fds []fieldDoc
	if err := v.Decode(&fds); err != nil {
		return nil, fmt.Errorf("yamldef: %s %s: %w", kind, name, err)
	}
	fields := make([]typedesc.Field, len(fds))
	for i, fd := range fds {
		var ft *typedesc.Type
		if fd.Type != "" {
			t, err := typedesc.Parse(fd.Type, l.defs.Scope)
			if err != nil {
				return nil, fmt.Errorf("yamldef: %s %s: field %s: %w", kind, name, fd.Name, err)
			}
			ft = t
		}
		fields[i] = typedesc.Field{Name: fd.Name, Type: ft}
	}
	return fields, nil
}

func (l *loader) declareNamedTuples(doc *document) error {
	return pairs(&doc.NamedTuples, "named_tuples", func(name string, v *yaml.Node) error {
		fields, err := l.fieldList("named tuple", name, v)
		if err != nil {
			return err
		}
		return l.declare(name, typedesc.NamedTupleType(name, fields...), v.Line)
	})
}

func (l *loader) declareTypedDicts(doc *document) error {
	return pairs(&doc.TypedDicts, "typed_dicts", func(name string, v *yaml.Node) error {
		fields, err := l.fieldList("typed dict", name, v)
		if err != nil {
			return err
		}
		return l.declare(name, typedesc.TypedDictType(name, fields...), v.Line)
	})
}

// plainValue decodes a YAML node into the plain value model.
func plainValue(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k, vv := range x {
			x[k] = normalize(vv)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[fmt.Sprint(k)] = normalize(vv)
		}
		return out
	}
	return v
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepCopy(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepCopy(vv)
		}
		return out
	}
	return v
}
