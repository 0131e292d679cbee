package domain

// RuleSetVersion is the rule-set schema version written to every document.
const RuleSetVersion = 3

// Rule is a single rule entry. Only the domain matcher is emitted.
type Rule struct {
	Domain []string `json:"domain"`
}

// RuleDocument is the top-level rule-set envelope.
//
// Field order is the serialization order: version, then rules.
type RuleDocument struct {
	Version int    `json:"version"`
	Rules   []Rule `json:"rules"`
}

// NewRuleDocument wraps hosts into a document with exactly one rule entry.
// Order and duplicates are preserved. A nil or empty input yields an empty,
// non-nil domain list so it serializes as [] rather than null.
func NewRuleDocument(hosts []string) RuleDocument {
	domains := make([]string, len(hosts))
	copy(domains, hosts)
	return RuleDocument{
		Version: RuleSetVersion,
		Rules:   []Rule{{Domain: domains}},
	}
}

// Domains returns the domain list of the single rule entry.
func (d RuleDocument) Domains() []string {
	if len(d.Rules) == 0 {
		return nil
	}
	return d.Rules[0].Domain
}
