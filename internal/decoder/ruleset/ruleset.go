// Package ruleset implements RuleSet, a filtered projection of a
// Specification's rules under an accumulating Condition.
package ruleset

import (
	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/spec"
)

// Entry wraps a rule with its effective condition: the portion of the
// rule's condition not yet implied by the RuleSet's accumulated condition.
type Entry struct {
	Rule      *spec.Rule
	Effective condition.Condition
}

// RuleSet is an accumulating Condition plus the ordered entries that
// remain reachable under it.
type RuleSet struct {
	Condition condition.Condition
	Entries   []Entry
}

// Root builds the initial RuleSet from every rule in s whose condition is
// compatible with an initial condition formed from an empty decode mask
// and the caller-supplied fixedFlags.
func Root(s *spec.Specification, fixedFlags condition.Condition) *RuleSet {
	rs := &RuleSet{Condition: fixedFlags}
	rs.populate(ruleSlice(s.Rules), fixedFlags)
	return rs
}

func ruleSlice(rules []*spec.Rule) []*spec.Rule {
	return rules
}

// populate implements the first-exact-match-prunes invariant: entries are
// admitted in order and iteration stops immediately after admitting any
// entry whose effective condition under newCond is empty.
func (rs *RuleSet) populate(rules []*spec.Rule, newCond condition.Condition) {
	rs.Entries = rs.Entries[:0]
	for _, r := range rules {
		if !r.Condition.IsCompatible(newCond) {
			continue
		}
		eff := r.Condition.SubtractIntersection(newCond)
		rs.Entries = append(rs.Entries, Entry{Rule: r, Effective: eff})
		if eff.IsEmpty() {
			break
		}
	}
}

// Derive builds a child RuleSet whose condition is union(parent, childCond),
// populated by filtering the parent's own rules (not its entries' stale
// effective conditions) against the new accumulated condition.
func (rs *RuleSet) Derive(childCond condition.Condition) *RuleSet {
	newCond := rs.Condition.Union(childCond)
	child := &RuleSet{Condition: newCond}
	child.populate(rs.underlyingRules(), newCond)
	return child
}

// DeriveExcludingLast produces a child with the same condition as rs, but
// omitting rs's last entry. Used by the fallback-sequence strategy.
func (rs *RuleSet) DeriveExcludingLast() *RuleSet {
	child := &RuleSet{Condition: rs.Condition}
	rules := rs.underlyingRules()
	if len(rules) > 0 {
		rules = rules[:len(rules)-1]
	}
	child.populate(rules, rs.Condition)
	return child
}

func (rs *RuleSet) underlyingRules() []*spec.Rule {
	rules := make([]*spec.Rule, len(rs.Entries))
	for i, e := range rs.Entries {
		rules[i] = e.Rule
	}
	return rules
}

// NumRules returns the number of entries currently in the set.
func (rs *RuleSet) NumRules() int { return len(rs.Entries) }
