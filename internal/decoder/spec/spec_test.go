package spec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insndecode/internal/decoder/spec"
)

func TestNewSpecificationStartsWithDummyFlag(t *testing.T) {
	s := spec.New(8)
	require.Equal(t, 1, s.NumFlags())
	f, ok := s.GetFlag(0)
	require.True(t, ok)
	assert.True(t, f.IsDummy())
	assert.False(t, s.HasFlags())
}

func TestAddFlagRemovesDummy(t *testing.T) {
	s := spec.New(8)
	f := s.AddFlag("CARRY")
	require.Equal(t, 1, s.NumFlags())
	assert.Equal(t, 0, f.Index())
	assert.True(t, s.HasFlags())

	got, ok := s.GetFlagByName("CARRY")
	require.True(t, ok)
	assert.Equal(t, f, got)
}

func TestAddFlagDuplicatePanics(t *testing.T) {
	s := spec.New(8)
	s.AddFlag("CARRY")
	assert.Panics(t, func() { s.AddFlag("CARRY") })
}

func TestRuleEffectiveWeightDefaultsToOne(t *testing.T) {
	r := &spec.Rule{}
	assert.Equal(t, 1, r.EffectiveWeight())
	r.Weight = 5
	assert.Equal(t, 5, r.EffectiveWeight())
}

func TestAddRulePreservesOrder(t *testing.T) {
	s := spec.New(4)
	r1 := &spec.Rule{Code: "a"}
	r2 := &spec.Rule{Code: "b"}
	s.AddRule(r1)
	s.AddRule(r2)
	require.Len(t, s.Rules, 2)
	assert.Same(t, r1, s.Rules[0])
	assert.Same(t, r2, s.Rules[1])
}
