// Package builder implements TreeBuilder: the ordered strategy cascade
// that turns a RuleSet into a decoder tree.
package builder

import (
	"insndecode/internal/config"
	"insndecode/internal/decoder/analyser"
	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/dtree"
	"insndecode/internal/decoder/ruleset"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
)

// BuildTree is the core's sole construction entry point: it consumes a
// fully populated Specification and an optional tristate array of
// externally fixed flags, and returns the decoder tree root.
func BuildTree(s *spec.Specification, fixedFlags *tristate.Array) *dtree.Node {
	if len(s.Rules) == 0 {
		panic("builder: empty specification")
	}
	if fixedFlags == nil {
		fixedFlags = tristate.New(s.FlagWidth())
	}

	rootCond := condition.New(tristate.New(s.NumBits), fixedFlags)
	rs := ruleset.Root(s, rootCond)

	b := &builder{spec: s, cfg: s.Config}
	return b.build(rs, 0, 0)
}

type builder struct {
	spec *spec.Specification
	cfg  *config.Config
}

// build tries each strategy in fixed order and returns the first
// non-nil result. The if-chain fallback always succeeds.
func (b *builder) build(rs *ruleset.RuleSet, switchNestingDepth, totalSwitchBits int) *dtree.Node {
	if n := b.tryEmpty(rs); n != nil {
		return n
	}
	if n := b.tryFallbackSequence(rs, switchNestingDepth, totalSwitchBits); n != nil {
		return n
	}
	if n := b.tryLiftFlags(rs, switchNestingDepth, totalSwitchBits); n != nil {
		return n
	}
	if n := b.tryLiftDecodeBits(rs, switchNestingDepth, totalSwitchBits); n != nil {
		return n
	}
	if n := b.tryInvertedPair(rs); n != nil {
		return n
	}
	if n := b.trySwitch(rs, switchNestingDepth, totalSwitchBits); n != nil {
		return n
	}
	if n := b.trySequence(rs); n != nil {
		return n
	}
	return b.ifChain(rs)
}

func (b *builder) tryEmpty(rs *ruleset.RuleSet) *dtree.Node {
	if rs.NumRules() == 0 {
		return dtree.Empty()
	}
	return nil
}

func (b *builder) tryFallbackSequence(rs *ruleset.RuleSet, depth, totalBits int) *dtree.Node {
	if !b.cfg.AllowSequence || rs.NumRules() < 2 {
		return nil
	}
	last := rs.Entries[len(rs.Entries)-1]
	if !last.Effective.IsEmpty() {
		return nil
	}

	rest := rs.DeriveExcludingLast()
	sub := b.build(rest, depth, totalBits)

	var seq *dtree.Node
	if sub.Kind == dtree.KindSequence {
		seq = sub
	} else {
		seq = dtree.Sequence(sub)
	}
	seq.Items = append(seq.Items, dtree.RuleLeaf(last.Rule))
	return seq
}

func (b *builder) tryLiftFlags(rs *ruleset.RuleSet, depth, totalBits int) *dtree.Node {
	if rs.NumRules() == 0 {
		return nil
	}
	first := rs.Entries[0].Effective.Flags
	if first.IsEmpty() {
		return nil
	}
	for _, e := range rs.Entries[1:] {
		if !e.Effective.Flags.Equal(first) {
			return nil
		}
	}

	childCond := condition.New(tristate.New(b.spec.NumBits), first)
	sub := b.build(rs.Derive(childCond), depth, totalBits)
	return dtree.IfElse(childCond, sub, dtree.Empty())
}

func (b *builder) tryLiftDecodeBits(rs *ruleset.RuleSet, depth, totalBits int) *dtree.Node {
	if rs.NumRules() == 0 {
		return nil
	}
	first := rs.Entries[0].Effective.Decode
	if first.IsEmpty() {
		return nil
	}
	for _, e := range rs.Entries[1:] {
		if !e.Effective.Decode.Equal(first) {
			return nil
		}
	}

	childCond := condition.New(first, tristate.New(b.spec.FlagWidth()))
	sub := b.build(rs.Derive(childCond), depth, totalBits)
	return dtree.IfElse(childCond, sub, dtree.Empty())
}

func (b *builder) tryInvertedPair(rs *ruleset.RuleSet) *dtree.Node {
	if rs.NumRules() != 2 {
		return nil
	}
	e0, e1 := rs.Entries[0], rs.Entries[1]
	if !e0.Effective.Flags.IsEmpty() || !e1.Effective.Flags.IsEmpty() {
		return nil
	}
	if e0.Effective.Decode.NumSignificantBits() != 1 || e1.Effective.Decode.NumSignificantBits() != 1 {
		return nil
	}

	bit0, ok0 := singleBit(e0.Effective.Decode)
	bit1, ok1 := singleBit(e1.Effective.Decode)
	if !ok0 || !ok1 || bit0 != bit1 {
		return nil
	}

	return dtree.IfElse(e0.Effective, dtree.RuleLeaf(e0.Rule), dtree.RuleLeaf(e1.Rule))
}

func singleBit(a *tristate.Array) (int, bool) {
	found := -1
	for i := 0; i < a.Len(); i++ {
		if a.GetMaskBit(i) {
			if found != -1 {
				return 0, false
			}
			found = i
		}
	}
	return found, found != -1
}

func (b *builder) isSwitchPermitted(rs *ruleset.RuleSet, depth int) bool {
	return b.cfg.AllowSwitch &&
		rs.NumRules() >= b.cfg.MinSwitchRules &&
		depth <= b.cfg.MaxSwitchNestingDepth
}

func (b *builder) trySwitch(rs *ruleset.RuleSet, depth, totalBits int) *dtree.Node {
	if !b.isSwitchPermitted(rs, depth) {
		return nil
	}

	maxBits := b.cfg.MaxSwitchBits
	if budget := b.cfg.MaxTotalSwitchBits - totalBits; budget < maxBits {
		maxBits = budget
	}
	minBits := b.cfg.MinSwitchBits
	if minBits > maxBits {
		return nil
	}

	ideal := analyser.IdealWidth(rs.NumRules())
	if ideal < minBits {
		ideal = minBits
	}
	if ideal > maxBits {
		ideal = maxBits
	}

	a := analyser.New(rs, b.spec.NumBits, b.cfg)
	exclusion := rs.Condition.Decode

	single, singleOK := a.FindBestBitfield(minBits, maxBits, ideal, exclusion)
	set, setOK := a.FindBestBitfieldSet(minBits, maxBits, ideal, exclusion)

	var expr dtree.Switchable
	switch {
	case singleOK && setOK:
		if single.Quality() >= set.Quality() {
			expr = single
		} else {
			expr = set
		}
	case singleOK:
		expr = single
	case setOK:
		expr = set
	default:
		return nil
	}

	width := expr.NumBits()
	numValues := expr.NumValues()
	cases := make([]*dtree.Node, numValues)
	// originals holds each case's freshly built subtree before any
	// ChildReference substitution, so later cases compare against the
	// actual content rather than against an already-collapsed reference.
	originals := make([]*dtree.Node, numValues)
	for v := 0; v < numValues; v++ {
		decodeBits := expr.GetBitsForValue(b.spec.NumBits, uint64(v))
		childCond := condition.New(decodeBits, tristate.New(b.spec.FlagWidth()))
		childRS := rs.Derive(childCond)
		subtree := b.build(childRS, depth+1, totalBits+width)
		originals[v] = subtree

		ref := -1
		for prev := 0; prev < v; prev++ {
			if subtree.Equal(originals[prev]) {
				ref = prev
				break
			}
		}
		if ref >= 0 {
			cases[v] = dtree.ChildReference(ref)
		} else {
			cases[v] = subtree
		}
	}

	return dtree.Switch(expr, cases)
}

func (b *builder) trySequence(rs *ruleset.RuleSet) *dtree.Node {
	if !b.cfg.AllowSequence || rs.NumRules() < 2 {
		return nil
	}
	items := make([]*dtree.Node, len(rs.Entries))
	for i, e := range rs.Entries {
		items[i] = dtree.IfElse(e.Effective, dtree.RuleLeaf(e.Rule), dtree.Empty())
	}
	return dtree.Sequence(items...)
}

func (b *builder) ifChain(rs *ruleset.RuleSet) *dtree.Node {
	result := dtree.Empty()
	for i := len(rs.Entries) - 1; i >= 0; i-- {
		e := rs.Entries[i]
		if e.Effective.IsEmpty() {
			result = dtree.RuleLeaf(e.Rule)
			continue
		}
		cond := e.Effective
		if b.cfg.NoOptimiseIfConditionNodes {
			cond = e.Rule.Condition
		}
		result = dtree.IfElse(cond, dtree.RuleLeaf(e.Rule), result)
	}
	return result
}
