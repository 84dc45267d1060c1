package analyser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insndecode/internal/config"
	"insndecode/internal/decoder/analyser"
	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/ruleset"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
)

func decodeCond(numBits int, bits map[int]bool) condition.Condition {
	d := tristate.New(numBits)
	for i, v := range bits {
		d.SetBit(i, v)
	}
	return condition.New(d, tristate.New(1))
}

func buildRuleSet(t *testing.T, numBits int, conds []map[int]bool) *ruleset.RuleSet {
	t.Helper()
	s := spec.New(numBits)
	for _, c := range conds {
		s.AddRule(&spec.Rule{Condition: decodeCond(numBits, c), Weight: 1})
	}
	return ruleset.Root(s, condition.Empty(numBits, 1))
}

func TestBitNeverDefinedHasZeroQuality(t *testing.T) {
	rs := buildRuleSet(t, 4, []map[int]bool{
		{0: true}, {0: false},
	})
	cfg := config.Default()
	a := analyser.New(rs, 4, &cfg)
	assert.Equal(t, 0.0, a.BitQuality(2))
	assert.Equal(t, 0.0, a.BitQuality(3))
}

func TestUnanimousBitHasZeroQuality(t *testing.T) {
	rs := buildRuleSet(t, 4, []map[int]bool{
		{0: true, 1: true}, {0: true, 1: false},
	})
	cfg := config.Default()
	a := analyser.New(rs, 4, &cfg)
	assert.Equal(t, 0.0, a.BitQuality(0), "bit 0 is 1 in every entry: balance=0")
	assert.Greater(t, a.BitQuality(1), 0.0)
}

func TestFindBestBitfieldPrefersDiscriminatingBits(t *testing.T) {
	// 16 distinct 4-bit patterns: bits 0-3 perfectly split the rules.
	var conds []map[int]bool
	for v := 0; v < 16; v++ {
		c := map[int]bool{}
		for b := 0; b < 4; b++ {
			c[b] = v&(1<<uint(b)) != 0
		}
		conds = append(conds, c)
	}
	rs := buildRuleSet(t, 4, conds)
	cfg := config.Default()
	a := analyser.New(rs, 4, &cfg)

	bf, ok := a.FindBestBitfield(2, 4, 4, tristate.New(4))
	require.True(t, ok)
	assert.Equal(t, 0, bf.Start)
	assert.Equal(t, 3, bf.End)
}

func TestFindBestBitfieldExcludesFixedBits(t *testing.T) {
	var conds []map[int]bool
	for v := 0; v < 16; v++ {
		c := map[int]bool{}
		for b := 0; b < 4; b++ {
			c[b] = v&(1<<uint(b)) != 0
		}
		conds = append(conds, c)
	}
	rs := buildRuleSet(t, 4, conds)
	cfg := config.Default()
	a := analyser.New(rs, 4, &cfg)

	excl := tristate.New(4)
	excl.SetBit(3, true)
	bf, ok := a.FindBestBitfield(1, 3, 3, excl)
	require.True(t, ok)
	assert.Less(t, bf.End, 3)
}

func TestFindBestBitfieldSetDisjointFields(t *testing.T) {
	var conds []map[int]bool
	for v := 0; v < 16; v++ {
		c := map[int]bool{
			0: v&1 != 0,
			1: (v>>1)&1 != 0,
			4: (v>>2)&1 != 0,
			5: (v>>3)&1 != 0,
		}
		conds = append(conds, c)
	}
	rs := buildRuleSet(t, 8, conds)
	cfg := config.Default()
	cfg.MaxSwitchSplits = 1
	a := analyser.New(rs, 8, &cfg)

	set, ok := a.FindBestBitfieldSet(2, 4, 4, tristate.New(8))
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(set.Fields), 2)
}

func TestFindBestBitfieldSetDisabledWhenSplitsZero(t *testing.T) {
	rs := buildRuleSet(t, 4, []map[int]bool{{0: true}, {0: false}})
	cfg := config.Default()
	cfg.MaxSwitchSplits = 0
	a := analyser.New(rs, 4, &cfg)
	_, ok := a.FindBestBitfieldSet(2, 4, 2, tristate.New(4))
	assert.False(t, ok)
}

func TestIdealWidth(t *testing.T) {
	assert.Equal(t, 1, analyser.IdealWidth(1))
	assert.Equal(t, 2, analyser.IdealWidth(3))
	assert.Equal(t, 4, analyser.IdealWidth(16))
	assert.Equal(t, 5, analyser.IdealWidth(17))
}
