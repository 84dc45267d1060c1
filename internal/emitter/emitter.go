// Package emitter renders a decoder tree (internal/decoder/dtree.Node) as
// C-family source text, consuming the Specification's opaque code
// fragments and Condition's pretty-printing for inline comments.
package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"insndecode/internal/config"
	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/dtree"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
)

// Emit renders tree to w as a single decoding function body, preceded and
// followed by the specification's file prologue/epilogue fragments and an
// enum of declared flags. wordVar and flagsVar name the instruction-word
// and flag-set parameters the generated boolean expressions reference.
func Emit(w io.Writer, s *spec.Specification, tree *dtree.Node, wordVar, flagsVar string) error {
	e := &emitter{
		w:       bufio.NewWriter(w),
		spec:    s,
		cfg:     s.Config,
		wordVar: wordVar,
		flagVar: flagsVar,
	}

	e.fragment(s.FileStart)
	if s.HasFlags() {
		e.enum()
	}
	e.fragment(s.FetchCode)
	e.fragment(s.DecodeFlagsCode)

	e.indent = max(s.RootIndentation, 0)
	e.node(tree)

	e.fragment(s.FileEnd)
	return e.w.Flush()
}

type emitter struct {
	w       *bufio.Writer
	spec    *spec.Specification
	cfg     *config.Config
	wordVar string
	flagVar string
	indent  int
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e *emitter) fragment(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(e.w, line)
	}
}

func (e *emitter) enum() {
	enumIndent := strings.Repeat(" ", max(e.spec.EnumIndentation, 0))
	e.fragment(e.spec.EnumStart)
	for i := 0; i < e.spec.NumFlags(); i++ {
		f, ok := e.spec.GetFlag(i)
		if !ok || f.IsDummy() {
			continue
		}
		fmt.Fprintf(e.w, "%sFLAG_%s = %d,\n", enumIndent, f.Name(), f.Index())
	}
	e.fragment(e.spec.EnumEnd)
}

func (e *emitter) pad() string { return strings.Repeat(" ", e.indent) }

func (e *emitter) comment(cond condition.Condition) {
	if e.cfg.NoPrettyOutput {
		return
	}
	pretty := cond.Pretty(e.spec)
	if pretty == "" {
		return
	}
	fmt.Fprintf(e.w, "%s// %s\n", e.pad(), pretty)
}

func (e *emitter) node(n *dtree.Node) {
	switch n.Kind {
	case dtree.KindEmpty:
		return

	case dtree.KindRule:
		e.comment(n.Rule.Condition)
		e.fragment(indentEach(n.Rule.Code, e.pad()))
		if !e.cfg.NoBreakAfterRule && !e.cfg.InsertReturns {
			fmt.Fprintf(e.w, "%sbreak;\n", e.pad())
		}
		if e.cfg.InsertReturns {
			fmt.Fprintf(e.w, "%sreturn;\n", e.pad())
		}

	case dtree.KindSequence:
		for _, item := range n.Items {
			e.node(item)
		}

	case dtree.KindIfElse:
		e.comment(n.Condition)
		fmt.Fprintf(e.w, "%sif (%s) {\n", e.pad(), e.conditionExpr(n.Condition))
		e.indent++
		e.node(n.IfBranch)
		e.indent--
		if n.ElseBranch.Kind != dtree.KindEmpty {
			fmt.Fprintf(e.w, "%s} else {\n", e.pad())
			e.indent++
			e.node(n.ElseBranch)
			e.indent--
		}
		fmt.Fprintf(e.w, "%s}\n", e.pad())

	case dtree.KindSwitch:
		fmt.Fprintf(e.w, "%sswitch (%s) {\n", e.pad(), switchExpr(e.wordVar, n.Expr))
		for v, c := range n.Cases {
			if c.Kind == dtree.KindChildReference {
				continue
			}
			fmt.Fprintf(e.w, "%scase 0x%x:\n", e.pad(), v)
			for j, other := range n.Cases {
				if j > v && other.Kind == dtree.KindChildReference && other.RefIndex == v {
					fmt.Fprintf(e.w, "%scase 0x%x:\n", e.pad(), j)
				}
			}
			e.indent++
			e.node(c)
			e.indent--
		}
		fmt.Fprintf(e.w, "%s}\n", e.pad())

	case dtree.KindChildReference:
		// handled inline by the KindSwitch case above

	default:
		panic(fmt.Sprintf("emitter: unhandled node kind %v", n.Kind))
	}
}

func indentEach(text, pad string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func (e *emitter) conditionExpr(cond condition.Condition) string {
	var parts []string
	if !cond.Decode.IsEmpty() {
		mask, value := maskValue(cond.Decode)
		parts = append(parts, fmt.Sprintf("(%s & 0x%xULL) == 0x%xULL", e.wordVar, mask, value))
	}
	if !cond.Flags.IsEmpty() {
		for i := 0; i < cond.Flags.Len(); i++ {
			if !cond.Flags.GetMaskBit(i) {
				continue
			}
			name := fmt.Sprintf("%s.%s", e.flagVar, e.spec.FlagName(i))
			if cond.Flags.GetValueBit(i) {
				parts = append(parts, name)
			} else {
				parts = append(parts, "!"+name)
			}
		}
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " && ")
}

func maskValue(a *tristate.Array) (mask, value uint64) {
	for i := 0; i < a.Len(); i++ {
		if a.GetMaskBit(i) {
			mask |= 1 << uint(i)
			if a.GetValueBit(i) {
				value |= 1 << uint(i)
			}
		}
	}
	return mask, value
}

func switchExpr(wordVar string, expr dtree.Switchable) string {
	switch e := expr.(type) {
	case dtree.Bitfield:
		return fmt.Sprintf("(%s >> %d) & 0x%xULL", wordVar, e.Start, (uint64(1)<<uint(e.Width()))-1)
	case dtree.BitfieldSet:
		var parts []string
		shift := 0
		for _, f := range e.Fields {
			width := f.Width()
			parts = append(parts, fmt.Sprintf("(((%s >> %d) & 0x%xULL) << %d)", wordVar, f.Start, (uint64(1)<<uint(width))-1, shift))
			shift += width
		}
		return strings.Join(parts, " | ")
	default:
		panic("emitter: unknown switchable")
	}
}
