// Package spec holds the in-memory data model of a parsed specification:
// flags, rules, and the Specification that owns them. Construction is the
// responsibility of internal/langparse; this package only defines the
// shapes and the read-only accessors the decoder core depends on.
package spec

import (
	"fmt"

	"insndecode/internal/config"
	"insndecode/internal/decoder/condition"
)

// Flag is a named boolean context input, e.g. a CPU mode bit.
type Flag struct {
	name    string
	index   int
	isDummy bool
}

// NewFlag constructs a named, non-dummy flag at the given index.
func NewFlag(name string, index int) Flag {
	return Flag{name: name, index: index}
}

func dummyFlag() Flag {
	return Flag{name: "", index: 0, isDummy: true}
}

// Name returns the flag's declared name.
func (f Flag) Name() string { return f.name }

// Index returns the flag's zero-based position in the flag table.
func (f Flag) Index() int { return f.index }

// IsDummy reports whether this is the placeholder flag a Specification is
// born with, before any real flag has been declared.
func (f Flag) IsDummy() bool { return f.isDummy }

// Rule is one pattern-rule of the specification: a condition, a code
// fragment to emit on match, a relative weight, a diagnostic source line,
// and a mutable mark bit reserved for reachability analysis.
type Rule struct {
	Condition condition.Condition
	Code      string
	Weight    int
	Line      int

	// Mark is not read or written by any package in this module: the
	// decoder core never inspects it, and internal/reachability keeps its
	// own side-table instead.
	Mark bool
}

// EffectiveWeight returns the weight to use, defaulting to 1 for
// unspecified or non-positive weights.
func (r *Rule) EffectiveWeight() int {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}

// Specification is the full in-memory model of one input spec: instruction
// width, flag table, ordered rule table, opaque code-fragment slots, and
// indentation settings. It is owned by the driver (internal/langparse plus
// cmd/insndecode) and shared by read-only reference with the decoder core.
type Specification struct {
	NumBits int
	Config  *config.Config

	flagsByIndex []Flag
	flagsByName  map[string]int

	Rules []*Rule

	FileStart, FileEnd string
	EnumStart, EnumEnd string
	DecodeFlagsCode    string
	FetchCode          string

	RootIndentation int
	EnumIndentation int
}

// New returns a Specification for an instruction width of numBits, seeded
// with the single dummy flag described in spec.md §3, and the default
// Config. Callers may overwrite Config after construction.
func New(numBits int) *Specification {
	if numBits < 1 {
		panic("spec: NumBits must be >= 1")
	}
	cfg := config.Default()
	return &Specification{
		NumBits:      numBits,
		Config:       &cfg,
		flagsByIndex: []Flag{dummyFlag()},
		flagsByName:  map[string]int{},
	}
}

// NumFlags returns the number of real (non-dummy) flags, or 1 if the
// dummy flag is still the only entry — callers that need a tristate width
// over flags should use FlagWidth instead.
func (s *Specification) NumFlags() int {
	return len(s.flagsByIndex)
}

// FlagWidth is the width to use for a Condition's flag component: the
// number of flags, but never zero, so downstream code never has to
// construct a zero-length tristate array.
func (s *Specification) FlagWidth() int {
	if len(s.flagsByIndex) == 0 {
		return 1
	}
	return len(s.flagsByIndex)
}

// HasFlags reports whether any real flag has been declared.
func (s *Specification) HasFlags() bool {
	return len(s.flagsByIndex) > 0 && !s.flagsByIndex[0].IsDummy()
}

// AddFlag declares a new named flag, removing the dummy placeholder on the
// first call. It panics if the name is already declared.
func (s *Specification) AddFlag(name string) Flag {
	if _, dup := s.flagsByName[name]; dup {
		panic(fmt.Sprintf("spec: duplicate flag %q", name))
	}
	if len(s.flagsByIndex) == 1 && s.flagsByIndex[0].IsDummy() {
		s.flagsByIndex = s.flagsByIndex[:0]
	}
	f := NewFlag(name, len(s.flagsByIndex))
	s.flagsByIndex = append(s.flagsByIndex, f)
	s.flagsByName[name] = f.Index()
	return f
}

// GetFlag returns the flag at a zero-based index.
func (s *Specification) GetFlag(i int) (Flag, bool) {
	if i < 0 || i >= len(s.flagsByIndex) {
		return Flag{}, false
	}
	return s.flagsByIndex[i], true
}

// GetFlagByName looks up a declared flag by name.
func (s *Specification) GetFlagByName(name string) (Flag, bool) {
	i, ok := s.flagsByName[name]
	if !ok {
		return Flag{}, false
	}
	return s.flagsByIndex[i], true
}

// FlagName implements condition.FlagNamer for pretty-printing.
func (s *Specification) FlagName(index int) string {
	f, ok := s.GetFlag(index)
	if !ok {
		return fmt.Sprintf("flag%d", index)
	}
	return f.Name()
}

// AddRule appends a rule in priority order (first match wins).
func (s *Specification) AddRule(r *Rule) {
	s.Rules = append(s.Rules, r)
}
