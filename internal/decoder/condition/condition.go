// Package condition implements Condition, a pair of tristate arrays over
// instruction-decode bits and context flag bits.
package condition

import (
	"fmt"
	"strings"

	"insndecode/internal/decoder/tristate"
)

// Condition pairs a decode-bit pattern with a flag pattern. Both arrays are
// fixed length for the lifetime of a Specification.
type Condition struct {
	Decode *tristate.Array
	Flags  *tristate.Array
}

// New builds a Condition from existing arrays. Both must be non-nil.
func New(decode, flags *tristate.Array) Condition {
	if decode == nil || flags == nil {
		panic("condition: decode and flags arrays must not be nil")
	}
	return Condition{Decode: decode, Flags: flags}
}

// Empty builds an all-undefined Condition over the given bit widths.
func Empty(numBits, numFlags int) Condition {
	return Condition{Decode: tristate.New(numBits), Flags: tristate.New(numFlags)}
}

// IsEmpty reports whether both components are entirely undefined.
func (c Condition) IsEmpty() bool {
	return c.Decode.IsEmpty() && c.Flags.IsEmpty()
}

// IsCompatible reports whether both components are pairwise compatible.
func (c Condition) IsCompatible(o Condition) bool {
	return c.Decode.IsCompatible(o.Decode) && c.Flags.IsCompatible(o.Flags)
}

// Union combines two conditions componentwise.
func (c Condition) Union(o Condition) Condition {
	return Condition{Decode: c.Decode.Union(o.Decode), Flags: c.Flags.Union(o.Flags)}
}

// Intersection combines two conditions componentwise.
func (c Condition) Intersection(o Condition) Condition {
	return Condition{Decode: c.Decode.Intersection(o.Decode), Flags: c.Flags.Intersection(o.Flags)}
}

// SubtractIntersection subtracts o's established bits from c, componentwise.
func (c Condition) SubtractIntersection(o Condition) Condition {
	return Condition{
		Decode: c.Decode.SubtractIntersection(o.Decode),
		Flags:  c.Flags.SubtractIntersection(o.Flags),
	}
}

// FlagNamer resolves a flag index to its declared name, for pretty-printing.
type FlagNamer interface {
	FlagName(index int) string
}

// String renders the raw diagnostic form: decode bits then flag bits, each
// in brackets, omitted if empty.
func (c Condition) String() string {
	var parts []string
	if !c.Decode.IsEmpty() {
		parts = append(parts, fmt.Sprintf("decode[%s]", c.Decode.String()))
	}
	if !c.Flags.IsEmpty() {
		parts = append(parts, fmt.Sprintf("flags[%s]", c.Flags.String()))
	}
	return strings.Join(parts, " ")
}

// Pretty renders the inline-comment form used by the emitter: decode bits,
// a space, then "[f1,!f2,...]" listing defined flags in index order with a
// "!" prefix on zero-valued flags. Either part is omitted if empty.
func (c Condition) Pretty(namer FlagNamer) string {
	var sb strings.Builder
	if !c.Decode.IsEmpty() {
		sb.WriteString(c.Decode.String())
	}
	if !c.Flags.IsEmpty() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		first := true
		for i := 0; i < c.Flags.Len(); i++ {
			if !c.Flags.GetMaskBit(i) {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			if !c.Flags.GetValueBit(i) {
				sb.WriteByte('!')
			}
			sb.WriteString(namer.FlagName(i))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
