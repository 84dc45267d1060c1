package emitter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insndecode/internal/decoder/builder"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/emitter"
	"insndecode/internal/langparse"
)

func mustParse(t *testing.T, src string) *spec.Specification {
	t.Helper()
	s, err := langparse.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestEmitSimpleDecoder(t *testing.T) {
	s := mustParse(t, `
%bits 4
0000 :return OP_A;
0001 :return OP_B;
.... :return OP_DEFAULT;
`)
	tree := builder.BuildTree(s, nil)

	var buf bytes.Buffer
	require.NoError(t, emitter.Emit(&buf, s, tree, "word", "flags"))
	out := buf.String()

	assert.Contains(t, out, "OP_A")
	assert.Contains(t, out, "OP_B")
	assert.Contains(t, out, "OP_DEFAULT")
	assert.Contains(t, out, "if (")
}

func TestEmitRespectsNoPrettyOutput(t *testing.T) {
	s := mustParse(t, `
%bits 4
0000 :return OP_A;
0001 :return OP_B;
`)
	s.Config.NoPrettyOutput = true
	tree := builder.BuildTree(s, nil)

	var buf bytes.Buffer
	require.NoError(t, emitter.Emit(&buf, s, tree, "word", "flags"))
	assert.NotContains(t, buf.String(), "//")
}

func TestEmitDenseSwitch(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("%bits 2\n")
	for v := 0; v < 4; v++ {
		sb.WriteString(toBits(v))
		sb.WriteString(" :return R")
		sb.WriteString(string(rune('0' + v)))
		sb.WriteString(";\n")
	}
	s := mustParse(t, sb.String())
	s.Config.MinSwitchRules = 4
	tree := builder.BuildTree(s, nil)

	var buf bytes.Buffer
	require.NoError(t, emitter.Emit(&buf, s, tree, "word", "flags"))
	out := buf.String()
	assert.Contains(t, out, "switch (")
	assert.Contains(t, out, "case 0x0:")
	assert.Contains(t, out, "case 0x3:")
}

func toBits(v int) string {
	buf := make([]byte, 2)
	for i := 0; i < 2; i++ {
		buf[i] = byte('0' + (v>>(1-i))&1)
	}
	return string(buf)
}
