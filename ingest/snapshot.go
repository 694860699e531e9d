package ingest

import (
	"os"
	"strings"

	"github.com/smallnest/ontollm/ontology"
)

// Snapshot summarizes an ontology document for dashboards.
type Snapshot struct {
	Exists        bool     `json:"exists"`
	Classes       int      `json:"classes"`
	Instances     int      `json:"instances"`
	Relations     int      `json:"relations"`
	Candidates    int      `json:"candidates"`
	ProductLabels []string `json:"product_labels"`
	RuleIDs       []string `json:"rule_ids"`
	RelationTypes []string `json:"relation_types"`
	PropertyKeys  []string `json:"property_keys"`
}

// Ready reports whether the document has classes and instances.
func (s Snapshot) Ready() bool {
	return s.Classes > 0 && s.Instances > 0
}

var (
	productClasses = map[string]bool{"product": true, "beverage": true}
	ruleClasses    = map[string]bool{"constraint": true, "rule": true, "policy": true, "guardrail": true}
	rulePrefixes   = []string{"RULE_", "CONS_", "POLICY_"}
)

// Summarize builds the snapshot of doc. Lists keep first-seen order
// without duplicates.
func Summarize(doc *ontology.Document) Snapshot {
	s := Snapshot{
		Exists:    true,
		Classes:   len(doc.Classes),
		Instances: len(doc.Instances),
		Relations: len(doc.Relations),
	}

	var products, rules, relTypes, keys unique
	for _, inst := range doc.Instances {
		class := strings.ToLower(inst.ClassName)
		if productClasses[class] || strings.HasSuffix(inst.ID, "_MILK") || strings.Contains(inst.Label, "우유") {
			products.add(firstNonEmpty(inst.Label, inst.ID))
		}
		if ruleClasses[class] || hasAnyPrefix(inst.ID, rulePrefixes) {
			rules.add(firstNonEmpty(inst.ID, inst.Label))
		}
		if class == "candidateanswer" || strings.HasPrefix(inst.ID, "CAND_") {
			s.Candidates++
		}
	}
	for _, p := range doc.Properties {
		keys.add(p.Key)
	}
	for _, r := range doc.Relations {
		relTypes.add(r.Type)
	}

	s.ProductLabels = products.items
	s.RuleIDs = rules.items
	s.RelationTypes = relTypes.items
	s.PropertyKeys = keys.items
	return s
}

// SnapshotFile summarizes the document at path. A missing file yields an
// empty snapshot.
func SnapshotFile(path string) (Snapshot, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Snapshot{}, nil
	}
	doc, err := ParseFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Summarize(doc), nil
}

type unique struct {
	seen  map[string]bool
	items []string
}

func (u *unique) add(s string) {
	s = strings.TrimSpace(s)
	if s == "" || u.seen[s] {
		return
	}
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	u.seen[s] = true
	u.items = append(u.items, s)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
