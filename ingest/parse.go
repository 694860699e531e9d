package ingest

import (
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/smallnest/ontollm/ontology"
)

type rawDocument struct {
	Classes   []rawClass    `yaml:"classes"`
	Instances []rawInstance `yaml:"instances"`
	Relations []rawRelation `yaml:"relations"`
}

type rawClass struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	line        int
}

func (c *rawClass) UnmarshalYAML(n *yaml.Node) error {
	type plain rawClass
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line = n.Line
	return nil
}

type rawInstance struct {
	ID         string        `yaml:"id"`
	Class      string        `yaml:"class"`
	Label      string        `yaml:"label"`
	Properties []rawProperty `yaml:"properties"`
	line       int
}

func (i *rawInstance) UnmarshalYAML(n *yaml.Node) error {
	type plain rawInstance
	if err := n.Decode((*plain)(i)); err != nil {
		return err
	}
	i.line = n.Line
	return nil
}

type rawProperty struct {
	Key   string    `yaml:"key"`
	Value yaml.Node `yaml:"value"`
	line  int
}

func (p *rawProperty) UnmarshalYAML(n *yaml.Node) error {
	type plain rawProperty
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.line = n.Line
	return nil
}

type rawRelation struct {
	Source string `yaml:"source"`
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
	line   int
}

func (r *rawRelation) UnmarshalYAML(n *yaml.Node) error {
	type plain rawRelation
	if err := n.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line = n.Line
	return nil
}

func invalid(line int, format string, args ...any) error {
	return errors.Wrapf(ontology.ErrInvalidDocument, "line %d: "+format, append([]any{line}, args...)...)
}

// Parse decodes one YAML ontology document. Labels are trimmed and blank
// labels become absent. Property values keep their scalar text; null
// stays null and nested values are stored as JSON. An empty input is an
// empty document.
func Parse(r io.Reader) (*ontology.Document, error) {
	var raw rawDocument
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &ontology.Document{}, nil
		}
		return nil, errors.Mark(errors.Wrap(err, "decode ontology yaml"), ontology.ErrInvalidDocument)
	}

	doc := &ontology.Document{}
	for _, c := range raw.Classes {
		if c.Name == "" {
			return nil, invalid(c.line, "class without name")
		}
		doc.Classes = append(doc.Classes, ontology.Class{Name: c.Name, Description: c.Description})
	}

	for _, inst := range raw.Instances {
		if inst.ID == "" {
			return nil, invalid(inst.line, "instance without id")
		}
		if inst.Class == "" {
			return nil, invalid(inst.line, "instance %s without class", inst.ID)
		}
		doc.Instances = append(doc.Instances, ontology.Instance{
			ID:        inst.ID,
			ClassName: inst.Class,
			Label:     strings.TrimSpace(inst.Label),
		})
		for _, p := range inst.Properties {
			if p.Key == "" {
				return nil, invalid(p.line, "property of %s without key", inst.ID)
			}
			v, err := propertyValue(&p.Value)
			if err != nil {
				return nil, invalid(p.line, "property %s.%s: %v", inst.ID, p.Key, err)
			}
			doc.Properties = append(doc.Properties, ontology.Property{InstanceID: inst.ID, Key: p.Key, Value: v})
		}
	}

	for _, rel := range raw.Relations {
		if rel.Source == "" || rel.Type == "" || rel.Target == "" {
			return nil, invalid(rel.line, "relation needs source, type and target")
		}
		doc.Relations = append(doc.Relations, ontology.Relation{Source: rel.Source, Type: rel.Type, Target: rel.Target})
	}
	return doc, nil
}

func propertyValue(n *yaml.Node) (sql.NullString, error) {
	switch n.Kind {
	case 0:
		return sql.NullString{}, nil
	case yaml.AliasNode:
		return propertyValue(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return sql.NullString{}, nil
		}
		return ontology.Value(n.Value), nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return sql.NullString{}, err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return sql.NullString{}, err
		}
		return ontology.Value(string(out)), nil
	}
}

// ParseFile parses the document at path.
func ParseFile(path string) (*ontology.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open ontology %s", path)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return doc, nil
}
