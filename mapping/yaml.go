package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// schemeDoc is the YAML form of a Transform:
//
//	preserve_keys: false
//	skip_missing: true
//	rules:
//	  - {to: name, from: full_name}
//	  - {to: age}
//	  - {to: pets, nested: [{to: name, from: pet_name}]}
//	  - {rest: true}
type schemeDoc struct {
	PreserveKeys bool      `yaml:"preserve_keys"`
	SkipMissing  bool      `yaml:"skip_missing"`
	Default      any       `yaml:"default"`
	Rules        []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	To     string    `yaml:"to"`
	From   string    `yaml:"from"`
	Nested []ruleDoc `yaml:"nested"`
	Rest   bool      `yaml:"rest"`
}

// LoadYAML builds a Transform from its YAML description. Computed rules
// cannot be expressed in YAML.
func LoadYAML(data []byte) (*Transform, error) {
	var doc schemeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mapping: %w", err)
	}
	scheme, err := buildScheme(doc.Rules)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if doc.PreserveKeys {
		opts = append(opts, PreserveKeys())
	}
	if doc.SkipMissing {
		opts = append(opts, SkipMissing())
	}
	if doc.Default != nil {
		opts = append(opts, DefaultValue(doc.Default))
	}
	return New(scheme, opts...), nil
}

func buildScheme(docs []ruleDoc) (Scheme, error) {
	scheme := make(Scheme, 0, len(docs))
	for i, d := range docs {
		switch {
		case d.Rest:
			scheme = append(scheme, Rest())
		case d.To == "":
			return nil, fmt.Errorf("%w: rule %d has no target key", ErrInvalidScheme, i)
		case d.Nested != nil:
			nested, err := buildScheme(d.Nested)
			if err != nil {
				return nil, err
			}
			from := d.From
			if from == "" {
				from = d.To
			}
			scheme = append(scheme, KeyScheme(d.To, from, nested))
		case d.From != "":
			scheme = append(scheme, From(d.To, d.From))
		default:
			scheme = append(scheme, Keep(d.To))
		}
	}
	return scheme, nil
}
