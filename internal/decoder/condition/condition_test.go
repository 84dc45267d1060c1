package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/tristate"
)

func mk(numBits, numFlags int, setDecode, setFlags map[int]bool) condition.Condition {
	d := tristate.New(numBits)
	for i, v := range setDecode {
		d.SetBit(i, v)
	}
	f := tristate.New(numFlags)
	for i, v := range setFlags {
		f.SetBit(i, v)
	}
	return condition.New(d, f)
}

func TestUnionIdempotent(t *testing.T) {
	c := mk(4, 2, map[int]bool{0: true, 2: false}, map[int]bool{1: true})
	assert.True(t, c.Union(c).IsCompatible(c))
	assert.True(t, c.Union(c).Decode.Equal(c.Decode))
}

func TestSubtractIntersectionEmpty(t *testing.T) {
	c := mk(4, 2, map[int]bool{0: true, 2: false}, map[int]bool{1: true})
	assert.True(t, c.SubtractIntersection(c).IsEmpty())
}

func TestCompatibleSymmetric(t *testing.T) {
	a := mk(4, 2, map[int]bool{0: true}, map[int]bool{})
	b := mk(4, 2, map[int]bool{0: false}, map[int]bool{})
	assert.Equal(t, a.IsCompatible(b), b.IsCompatible(a))
	assert.False(t, a.IsCompatible(b))
}

type stubNamer struct{ names []string }

func (s stubNamer) FlagName(i int) string { return s.names[i] }

func TestPrettyRendering(t *testing.T) {
	c := mk(4, 3, map[int]bool{3: true, 1: false}, map[int]bool{0: true, 2: false})
	got := c.Pretty(stubNamer{names: []string{"F0", "F1", "F2"}})
	assert.Equal(t, "1.0. [F0,!F2]", got)
}

func TestPrettyOmitsEmptyParts(t *testing.T) {
	c := condition.Empty(4, 3)
	assert.Equal(t, "", c.Pretty(stubNamer{names: []string{"F0", "F1", "F2"}}))
}
