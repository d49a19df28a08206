package chisel

import (
	"github.com/reoring/chisel/schema"
	"github.com/reoring/chisel/typedesc"
)

type recordField struct {
	prop *schema.Property
	s    Strategy
}

// recordStrategy converts mappings into record instances through the
// record's schema. Instantiated generic records resolve each field type
// with the record's type arguments substituted.
//
// The strategy is published to the registry cache before its fields are
// resolved; ready is closed once prepare has finished.
type recordStrategy struct {
	t      *typedesc.Type
	policy ExtractPolicy

	ready  chan struct{}
	err    error
	sch    *schema.Schema
	fields []recordField
}

func newRecordStrategy(t *typedesc.Type, policy ExtractPolicy) *recordStrategy {
	return &recordStrategy{t: t, policy: policy, ready: make(chan struct{})}
}

func (s *recordStrategy) prepare(r *Registry, strict bool) error {
	sch, err := r.schemas.SchemaFor(s.t)
	if err != nil {
		return withCause(errInvalidType(s.t, "no schema"), err)
	}
	bindings := typedesc.ParamsMap(s.t)
	props := sch.Properties()
	fields := make([]recordField, 0, len(props))
	for _, p := range props {
		ft := typedesc.Substitute(p.Type, bindings)
		if typedesc.ContainsParam(ft) {
			return errInvalidType(s.t, "unbound type parameter in "+p.Name)
		}
		st, err := r.GetFor(ft, strict)
		if err != nil {
			return err
		}
		fields = append(fields, recordField{prop: p, s: st})
	}
	s.sch = sch
	s.fields = fields
	return nil
}

func (s *recordStrategy) finish(err error) {
	s.err = err
	close(s.ready)
}

func (s *recordStrategy) wait() error {
	<-s.ready
	return s.err
}

func (s *recordStrategy) Hydrate(v any) (any, error) {
	if err := s.wait(); err != nil {
		return nil, err
	}
	in, ok := stringKeyed(v)
	if !ok {
		return nil, errInvalidValue(s.t.String(), v)
	}
	b := s.sch.Binding()
	inst := b.New(s.t)
	for _, f := range s.fields {
		p := f.prop
		if !p.Hydrate {
			if dv, ok := p.DefaultValue(); ok {
				if err := b.Set(inst, p.Name, dv); err != nil {
					return nil, atKey(err, p.Name)
				}
			}
			continue
		}
		var val any
		if raw, present := in[p.Name]; present {
			h, err := f.s.Hydrate(raw)
			if err != nil {
				return nil, atKey(err, p.Name)
			}
			val = h
		} else if dv, ok := p.DefaultValue(); ok {
			val = dv
		} else if !typedesc.IsOptional(p.Type) {
			return nil, atKey(errRequired(p.Name), p.Name)
		}
		if err := b.Set(inst, p.Name, val); err != nil {
			return nil, atKey(err, p.Name)
		}
	}
	if err := s.sch.PostInit(inst); err != nil {
		return nil, rebase(err, Root())
	}
	return inst, nil
}

func (s *recordStrategy) Extract(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if err := s.wait(); err != nil {
		return nil, err
	}
	b := s.sch.Binding()
	if !b.Owns(s.t, v) {
		return nil, errInvalidValue(s.t.String(), v)
	}
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		p := f.prop
		if !p.Extract {
			continue
		}
		val, ok := b.Get(v, p.Name)
		if !ok {
			val, ok = p.DefaultValue()
		}
		if !ok {
			if s.policy == ExtractAbsentAsNull {
				out[p.Name] = nil
			}
			continue
		}
		e, err := f.s.Extract(val)
		if err != nil {
			return nil, atKey(err, p.Name)
		}
		out[p.Name] = e
	}
	return out, nil
}

// accepts reports whether a mapping with keys in could hydrate into the
// record: every required key is present and no key is unknown. Keys of
// extract-only fields are tolerated so extracted records hydrate back.
func (s *recordStrategy) accepts(in map[string]any) bool {
	if s.wait() != nil {
		return false
	}
	declared := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		declared[f.prop.Name] = true
		if f.prop.Hydrate {
			if _, ok := in[f.prop.Name]; !ok && f.prop.Required() {
				return false
			}
		}
	}
	for k := range in {
		if !declared[k] {
			return false
		}
	}
	return true
}
