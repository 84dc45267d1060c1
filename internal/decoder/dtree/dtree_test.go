package dtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/dtree"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
)

func cond(n int) condition.Condition {
	return condition.Empty(n, 1)
}

func TestEmptyEqual(t *testing.T) {
	assert.True(t, dtree.Empty().Equal(dtree.Empty()))
}

func TestRuleLeafEqualByIdentity(t *testing.T) {
	r1 := &spec.Rule{Code: "a"}
	r2 := &spec.Rule{Code: "a"}
	assert.True(t, dtree.RuleLeaf(r1).Equal(dtree.RuleLeaf(r1)))
	assert.False(t, dtree.RuleLeaf(r1).Equal(dtree.RuleLeaf(r2)))
}

func TestChildReferenceEqualByIndex(t *testing.T) {
	assert.True(t, dtree.ChildReference(2).Equal(dtree.ChildReference(2)))
	assert.False(t, dtree.ChildReference(1).Equal(dtree.ChildReference(2)))
}

func TestSwitchRequiresExactCaseCount(t *testing.T) {
	bf := dtree.NewBitfield(0, 1, 1.0)
	assert.Panics(t, func() {
		dtree.Switch(bf, []*dtree.Node{dtree.Empty()})
	})
}

func TestTouchVisitsPreOrder(t *testing.T) {
	r := &spec.Rule{Code: "x"}
	tree := dtree.IfElse(cond(4), dtree.RuleLeaf(r), dtree.Empty())

	var order []dtree.Kind
	dtree.Touch(tree, func(n *dtree.Node) { order = append(order, n.Kind) })

	require.Equal(t, []dtree.Kind{dtree.KindIfElse, dtree.KindRule, dtree.KindEmpty}, order)
}

func TestBitfieldSetGetBitsForValueConcatenatesLowToHigh(t *testing.T) {
	set := dtree.NewBitfieldSet([]dtree.Bitfield{
		dtree.NewBitfield(0, 1, 1.0),
		dtree.NewBitfield(4, 5, 1.0),
	}, 1.0)

	bits := set.GetBitsForValue(8, 0b1001) // low field=01, high field=10
	a := tristate.New(8)
	a.SetBit(0, true)
	a.SetBit(1, false)
	a.SetBit(4, false)
	a.SetBit(5, true)
	assert.True(t, bits.Equal(a))
}

func TestBitfieldSetEqualIsPairwise(t *testing.T) {
	a := dtree.NewBitfieldSet([]dtree.Bitfield{
		dtree.NewBitfield(0, 1, 1.0),
		dtree.NewBitfield(4, 5, 1.0),
	}, 1.0)
	b := dtree.NewBitfieldSet([]dtree.Bitfield{
		dtree.NewBitfield(0, 1, 1.0),
		dtree.NewBitfield(4, 5, 1.0),
	}, 1.0)
	c := dtree.NewBitfieldSet([]dtree.Bitfield{
		dtree.NewBitfield(0, 1, 1.0),
		dtree.NewBitfield(6, 7, 1.0),
	}, 1.0)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
