// Package reachability walks a built decoder tree to report rules that
// the tree construction left unreachable. It is a diagnostic pass, not
// part of the core: an unreachable rule is a Warning, never an error.
package reachability

import (
	"fmt"

	"insndecode/internal/decoder/dtree"
	"insndecode/internal/decoder/spec"
)

// Warning names a rule that Touch never visited while walking the tree.
type Warning struct {
	Rule *spec.Rule
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: rule is unreachable", w.Rule.Line)
}

// Check walks tree with dtree.Touch, marking every visited rule in a
// side-table keyed by rule identity (spec.Rule.Mark is never touched;
// see spec.md §9's note on keeping rules immutable in the core), and
// returns a Warning for every rule in s.Rules that was never visited.
func Check(s *spec.Specification, tree *dtree.Node) []Warning {
	seen := make(map[*spec.Rule]bool, len(s.Rules))
	dtree.Touch(tree, func(n *dtree.Node) {
		if n.Kind == dtree.KindRule {
			seen[n.Rule] = true
		}
	})

	var warnings []Warning
	for _, r := range s.Rules {
		if !seen[r] {
			warnings = append(warnings, Warning{Rule: r})
		}
	}
	return warnings
}
