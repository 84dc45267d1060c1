// Package analyser implements BitfieldAnalyser: per-bit discriminating
// power over a RuleSet, and the search for the best single bitfield or
// disjoint bitfield set to switch upon.
package analyser

import (
	"math"

	"insndecode/internal/config"
	"insndecode/internal/decoder/dtree"
	"insndecode/internal/decoder/ruleset"
	"insndecode/internal/decoder/tristate"
)

// Analyser precomputes per-bit statistics over a RuleSet's entries.
type Analyser struct {
	cfg     *config.Config
	numBits int

	total      []int
	totalOne   []int
	score      []float64
	bitQuality []float64

	minSignificantBit int
	maxSignificantBit int
}

// New builds an Analyser over rs, assuming an instruction width of numBits.
func New(rs *ruleset.RuleSet, numBits int, cfg *config.Config) *Analyser {
	a := &Analyser{
		cfg:               cfg,
		numBits:           numBits,
		total:             make([]int, numBits),
		totalOne:          make([]int, numBits),
		score:             make([]float64, numBits),
		bitQuality:        make([]float64, numBits),
		minSignificantBit: -1,
		maxSignificantBit: -1,
	}

	for _, e := range rs.Entries {
		dec := e.Effective.Decode
		weight := float64(e.Rule.EffectiveWeight())
		if !e.Effective.Flags.IsEmpty() {
			weight *= cfg.BitFlagCoef
		}
		for i := 0; i < numBits; i++ {
			if !dec.GetMaskBit(i) {
				continue
			}
			a.total[i]++
			if dec.GetValueBit(i) {
				a.totalOne[i]++
			}
			a.score[i] += weight
		}
	}

	sumScore := 0.0
	for _, s := range a.score {
		sumScore += s
	}

	for i := 0; i < numBits; i++ {
		if a.total[i] == 0 || a.score[i] == 0 || sumScore == 0 {
			a.bitQuality[i] = 0
			continue
		}
		zeros := a.total[i] - a.totalOne[i]
		balance := 2.0 * float64(min(a.totalOne[i], zeros)) / float64(a.total[i])
		a.bitQuality[i] = balance * a.score[i] / sumScore
		if a.bitQuality[i] > 0 {
			if a.minSignificantBit == -1 {
				a.minSignificantBit = i
			}
			a.maxSignificantBit = i
		}
	}

	return a
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// BitQuality returns the precomputed quality score for bit i.
func (a *Analyser) BitQuality(i int) float64 { return a.bitQuality[i] }

// HasCandidates reports whether any bit has nonzero quality.
func (a *Analyser) HasCandidates() bool { return a.minSignificantBit != -1 }

// IdealWidth is ceil(log2(ruleCount)), but never less than 1; the caller
// clamps it to [min,max].
func IdealWidth(ruleCount int) int {
	if ruleCount <= 1 {
		return 1
	}
	w := 0
	for (1 << uint(w)) < ruleCount {
		w++
	}
	return w
}

// FindBestBitfield searches for the highest-quality contiguous bitfield of
// width in [minW,maxW]. exclusion marks bits that cannot be used (bits
// already fixed along the current tree path). Ties prefer the earlier
// candidate in (start ascending, end ascending) order.
func (a *Analyser) FindBestBitfield(minW, maxW, ideal int, exclusion *tristate.Array) (dtree.Bitfield, bool) {
	if !a.HasCandidates() {
		return dtree.Bitfield{}, false
	}

	var best dtree.Bitfield
	bestQuality := math.Inf(-1)
	found := false

	for start := a.minSignificantBit; start <= a.maxSignificantBit; start++ {
		runningSum := 0.0
		for end := start; end <= a.maxSignificantBit && end-start+1 <= maxW; end++ {
			if a.bitQuality[end] == 0 || exclusion.GetMaskBit(end) {
				break
			}
			runningSum += a.bitQuality[end]
			width := end - start + 1
			if width < minW {
				continue
			}
			q := runningSum / math.Pow(1+math.Abs(float64(ideal-width)), a.cfg.BitfieldLengthDeltaPower)
			if !found || q > bestQuality {
				best = dtree.NewBitfield(start, end, q)
				bestQuality = q
				found = true
			}
		}
	}
	return best, found
}

// bestRawRange finds the highest raw-quality (unpenalized) bitfield of
// exactly the given width, excluding bits in exclusion. It is the building
// block FindBestBitfieldSet uses so the per-field width penalty is applied
// only once, to the assembled set's total width.
func (a *Analyser) bestRawRange(width int, exclusion *tristate.Array) (dtree.Bitfield, float64, bool) {
	if !a.HasCandidates() {
		return dtree.Bitfield{}, 0, false
	}

	var best dtree.Bitfield
	bestRaw := math.Inf(-1)
	found := false

	for start := a.minSignificantBit; start+width-1 <= a.maxSignificantBit; start++ {
		end := start + width - 1
		sum := 0.0
		valid := true
		for i := start; i <= end; i++ {
			if a.bitQuality[i] == 0 || exclusion.GetMaskBit(i) {
				valid = false
				break
			}
			sum += a.bitQuality[i]
		}
		if !valid {
			continue
		}
		if !found || sum > bestRaw {
			best = dtree.NewBitfield(start, end, sum)
			bestRaw = sum
			found = true
		}
	}
	return best, bestRaw, found
}

type fieldCombo struct {
	fields []dtree.Bitfield
	rawQ   float64
	width  int
}

// combine finds a combination of exactly remainingK disjoint fields whose
// widths sum to exactly budget, using bits not in exclusion. For each width
// of the first field it takes the highest raw-quality range of that width
// and recurses on the remaining fields; it keeps the candidate with the
// highest total raw quality, which is not necessarily the best of all
// possible combinations. Fields are returned in selection order, not
// sorted by start bit.
func (a *Analyser) combine(remainingK, budget int, exclusion *tristate.Array) (fieldCombo, bool) {
	if remainingK == 0 {
		if budget == 0 {
			return fieldCombo{}, true
		}
		return fieldCombo{}, false
	}

	var best fieldCombo
	bestRaw := math.Inf(-1)
	found := false

	maxW := budget - (remainingK - 1)
	for w := 1; w <= maxW; w++ {
		field, raw, ok := a.bestRawRange(w, exclusion)
		if !ok {
			continue
		}
		childExclusion := exclusion.Union(fullMask(a.numBits, field.Start, field.End))
		rest, ok := a.combine(remainingK-1, budget-w, childExclusion)
		if !ok {
			continue
		}
		total := raw + rest.rawQ
		if !found || total > bestRaw {
			fields := append([]dtree.Bitfield{field}, rest.fields...)
			best = fieldCombo{fields: fields, rawQ: total, width: w + rest.width}
			bestRaw = total
			found = true
		}
	}
	return best, found
}

// fullMask returns a tristate array with [start,end] defined (values are
// irrelevant; only the mask is consulted by exclusion checks).
func fullMask(numBits, start, end int) *tristate.Array {
	return tristate.LoadBitfieldValue(numBits, start, end, 0)
}

// FindBestBitfieldSet searches for the highest-quality disjoint bitfield
// set of total width in [minW,maxW], trying field counts from 2 through
// Config.MaxSwitchSplits+1. It returns false if MaxSwitchSplits == 0 or no
// valid set exists.
func (a *Analyser) FindBestBitfieldSet(minW, maxW, ideal int, exclusion *tristate.Array) (dtree.BitfieldSet, bool) {
	if a.cfg.MaxSwitchSplits == 0 || !a.HasCandidates() {
		return dtree.BitfieldSet{}, false
	}

	var best dtree.BitfieldSet
	bestQuality := math.Inf(-1)
	found := false

	for k := 2; k <= a.cfg.MaxSwitchSplits+1; k++ {
		for total := maxInt(minW, k); total <= maxW; total++ {
			combo, ok := a.combine(k, total, exclusion)
			if !ok {
				continue
			}
			q := a.cfg.BitfieldSetCoef * combo.rawQ /
				math.Pow(1+math.Abs(float64(ideal-total)), a.cfg.BitfieldSetLengthDeltaPower)
			if !found || q > bestQuality {
				best = dtree.NewBitfieldSet(combo.fields, q)
				bestQuality = q
				found = true
			}
		}
	}
	return best, found
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
