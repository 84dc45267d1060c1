// Package langparse parses the line-oriented specification grammar of
// spec.md §6 into an internal/decoder/spec.Specification.
package langparse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
)

// Error is a single diagnostic line with its source line number, the
// carrier for every SpecificationError this package raises.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errf(line int, format string, args ...interface{}) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

type flagSpec struct {
	name   string
	negate bool
}

type pendingRule struct {
	line    int
	pattern string
	weight  int
	flags   []flagSpec
	code    []string
}

type parser struct {
	numBits int
	bitsSet bool

	flagNames []string
	flagSeen  map[string]bool

	rootIndent, enumIndent int

	fileStart, fileEnd     []string
	enumStart, enumEnd     []string
	decodeFlags, fetchCode []string

	rules   []*pendingRule
	sawRule bool

	// target is the fragment buffer that continuation and '@' lines
	// append to; nil outside of any directive or rule.
	target *[]string
}

// Parse reads a specification from r and returns the populated
// Specification, or the first *Error encountered.
func Parse(r io.Reader) (*spec.Specification, error) {
	p := &parser{flagSeen: map[string]bool{}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(lineNo, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return p.build(lineNo)
}

func (p *parser) line(lineNo int, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	switch raw[0] {
	case '#':
		return nil
	case '%':
		return p.directive(lineNo, strings.TrimSpace(raw[1:]))
	case '@':
		return p.appendFragment(lineNo, raw[1:])
	case ' ', '\t':
		return p.appendFragment(lineNo, strings.TrimSpace(raw))
	default:
		return p.rule(lineNo, raw)
	}
}

func (p *parser) appendFragment(lineNo int, text string) error {
	if p.target == nil {
		return errf(lineNo, "fragment line outside any directive or rule")
	}
	*p.target = append(*p.target, text)
	return nil
}

func (p *parser) directive(lineNo int, rest string) error {
	if p.sawRule {
		return errf(lineNo, "directive after rule")
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return errf(lineNo, "empty directive")
	}
	name, args := fields[0], fields[1:]
	p.target = nil

	switch name {
	case "bits":
		n, err := parseIntArg(lineNo, args, "bits")
		if err != nil {
			return err
		}
		if n <= 0 {
			return errf(lineNo, "bits must be positive, got %d", n)
		}
		p.numBits = n
		p.bitsSet = true

	case "flag":
		if len(args) != 1 {
			return errf(lineNo, "flag directive requires exactly one name")
		}
		if p.flagSeen[args[0]] {
			return errf(lineNo, "duplicate flag %q", args[0])
		}
		p.flagSeen[args[0]] = true
		p.flagNames = append(p.flagNames, args[0])

	case "rootIndentation":
		n, err := parseIntArg(lineNo, args, "rootIndentation")
		if err != nil {
			return err
		}
		p.rootIndent = n

	case "enumIndentation":
		n, err := parseIntArg(lineNo, args, "enumIndentation")
		if err != nil {
			return err
		}
		p.enumIndent = n

	case "fileStart":
		p.target = &p.fileStart
	case "fileEnd":
		p.target = &p.fileEnd
	case "enumStart":
		p.target = &p.enumStart
	case "enumEnd":
		p.target = &p.enumEnd
	case "decodeFlags":
		p.target = &p.decodeFlags
	case "fetch":
		p.target = &p.fetchCode

	default:
		return errf(lineNo, "unknown directive %q", name)
	}
	return nil
}

func parseIntArg(lineNo int, args []string, directive string) (int, error) {
	if len(args) != 1 {
		return 0, errf(lineNo, "%s directive requires exactly one integer argument", directive)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errf(lineNo, "bad number %q for %s", args[0], directive)
	}
	return n, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *parser) rule(lineNo int, raw string) error {
	if !p.bitsSet {
		return errf(lineNo, "missing bits directive before rule")
	}
	p.sawRule = true
	p.target = nil

	if len(raw) < p.numBits {
		return errf(lineNo, "wrong bit count in pattern: expected %d bits", p.numBits)
	}
	pattern := raw[:p.numBits]
	for _, ch := range pattern {
		if ch != '0' && ch != '1' && ch != '.' {
			return errf(lineNo, "invalid pattern character %q", ch)
		}
	}
	rest := raw[p.numBits:]

	r := &pendingRule{line: lineNo, pattern: pattern}

	if strings.HasPrefix(rest, "$") {
		rest = rest[1:]
		end := 0
		for end < len(rest) && (isDigit(rest[end]) || rest[end] == '.') {
			end++
		}
		if end == 0 {
			return errf(lineNo, "bad number after $")
		}
		token := rest[:end]
		rest = rest[end:]
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return errf(lineNo, "bad number %q", token)
		}
		// The legacy weight field parses a decimal literal but truncates
		// it to an integer; that user-visible behaviour is preserved here.
		r.weight = int(f)
	}

	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return errf(lineNo, "unterminated flag spec")
		}
		spec := rest[1:end]
		rest = rest[end+1:]
		for _, part := range strings.Split(spec, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			negate := false
			if strings.HasPrefix(part, "!") {
				negate = true
				part = part[1:]
			}
			if !p.flagSeen[part] {
				return errf(lineNo, "undeclared flag %q", part)
			}
			r.flags = append(r.flags, flagSpec{name: part, negate: negate})
		}
	}

	rest = strings.TrimLeft(rest, " \t")
	switch {
	case strings.HasPrefix(rest, ":"):
		r.code = append(r.code, strings.TrimSpace(rest[1:]))
	case rest != "":
		return errf(lineNo, "unexpected trailing text %q after rule pattern", rest)
	}

	p.rules = append(p.rules, r)
	p.target = &r.code
	return nil
}

func (p *parser) build(lastLine int) (*spec.Specification, error) {
	if !p.bitsSet {
		return nil, errf(lastLine, "missing bits directive")
	}

	s := spec.New(p.numBits)
	for _, name := range p.flagNames {
		s.AddFlag(name)
	}

	s.RootIndentation = p.rootIndent
	s.EnumIndentation = p.enumIndent
	s.FileStart = strings.Join(p.fileStart, "\n")
	s.FileEnd = strings.Join(p.fileEnd, "\n")
	s.EnumStart = strings.Join(p.enumStart, "\n")
	s.EnumEnd = strings.Join(p.enumEnd, "\n")
	s.DecodeFlagsCode = strings.Join(p.decodeFlags, "\n")
	s.FetchCode = strings.Join(p.fetchCode, "\n")

	for _, pr := range p.rules {
		cond, err := buildCondition(s, pr)
		if err != nil {
			return nil, err
		}
		s.AddRule(&spec.Rule{
			Condition: cond,
			Code:      strings.Join(pr.code, "\n"),
			Weight:    pr.weight,
			Line:      pr.line,
		})
	}

	return s, nil
}

func buildCondition(s *spec.Specification, pr *pendingRule) (condition.Condition, error) {
	decode := tristate.New(s.NumBits)
	for i, ch := range pr.pattern {
		pos := s.NumBits - 1 - i
		switch ch {
		case '0':
			decode.SetBit(pos, false)
		case '1':
			decode.SetBit(pos, true)
		}
	}

	flags := tristate.New(s.FlagWidth())
	for _, fs := range pr.flags {
		f, ok := s.GetFlagByName(fs.name)
		if !ok {
			return condition.Condition{}, errf(pr.line, "undeclared flag %q", fs.name)
		}
		flags.SetBit(f.Index(), !fs.negate)
	}

	return condition.New(decode, flags), nil
}
