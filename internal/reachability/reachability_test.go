package reachability_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insndecode/internal/decoder/builder"
	"insndecode/internal/langparse"
	"insndecode/internal/reachability"
)

func TestCheckFindsNoWarningsForReachableSpec(t *testing.T) {
	s, err := langparse.Parse(strings.NewReader(`
%bits 4
0000 :A
0001 :B
.... :C
`))
	require.NoError(t, err)
	tree := builder.BuildTree(s, nil)

	warnings := reachability.Check(s, tree)
	assert.Empty(t, warnings)
}

func TestCheckFlagsRuleShadowedByEarlierCatchAll(t *testing.T) {
	s, err := langparse.Parse(strings.NewReader(`
%bits 4
.... :CATCHALL
0000 :UNREACHABLE
`))
	require.NoError(t, err)
	tree := builder.BuildTree(s, nil)

	warnings := reachability.Check(s, tree)
	require.Len(t, warnings, 1)
	assert.Equal(t, "UNREACHABLE", warnings[0].Rule.Code)
}
