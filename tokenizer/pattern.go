package tokenizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// Pattern owns the two compiled regexes an Encoder needs: the pre-tokenizer
// split regex (main) and, when the vocabulary has special tokens, an
// alternation over their escaped literals (special). Both use regexp2
// because the published pre-tokenizer patterns require Unicode property
// classes and a negative lookahead (\s+(?!\S)) that Go's standard-library
// RE2-based regexp cannot express at all.
type Pattern struct {
	mainSrc    string
	main       *regexp2.Regexp
	specialSrc string
	special    *regexp2.Regexp // nil if the vocabulary has no special tokens
}

// CompilePattern compiles the pre-tokenizer pattern and, if literals is
// non-empty, the special-token alternation.
func CompilePattern(patStr string, literals []string) (*Pattern, error) {
	main, err := regexp2.Compile(patStr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	p := &Pattern{mainSrc: patStr, main: main}
	if len(literals) > 0 {
		specialSrc := specialAlternation(literals)
		special, err := regexp2.Compile(specialSrc, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		p.specialSrc = specialSrc
		p.special = special
	}
	return p, nil
}

// specialAlternation builds "(lit1|lit2|...)" over escaped literals, longest
// first, so that one literal being a prefix of another doesn't shadow it.
func specialAlternation(literals []string) string {
	sorted := append([]string(nil), literals...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, l := range sorted {
		escaped[i] = regexp.QuoteMeta(l)
	}
	return "(" + strings.Join(escaped, "|") + ")"
}

// Clone recompiles both expressions into independent engine instances. A
// host worried about internal scratch-buffer contention when many goroutines
// drive the same *regexp2.Regexp concurrently can hand each goroutine its
// own Pattern; regexp2 itself documents FindStringMatch as concurrency-safe,
// so this is a throughput knob, not a correctness requirement.
func (p *Pattern) Clone() (*Pattern, error) {
	main, err := regexp2.Compile(p.mainSrc, regexp2.None)
	if err != nil {
		return nil, err
	}
	clone := &Pattern{mainSrc: p.mainSrc, main: main}
	if p.special != nil {
		// specialSrc already carries the literals in escaped, sorted form;
		// recompiling it directly is simpler and exactly equivalent to
		// rebuilding from the original literals slice.
		special, err := regexp2.Compile(p.specialSrc, regexp2.None)
		if err != nil {
			return nil, err
		}
		clone.specialSrc = p.specialSrc
		clone.special = special
	}
	return clone, nil
}

// Pieces returns the non-overlapping, left-to-right matches of the main
// pattern over s, in order. Gaps the pattern doesn't match are dropped, per
// the reference tokenizer's behavior with its published (input-covering)
// patterns.
func (p *Pattern) Pieces(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	m, err := p.main.FindStringMatch(s)
	if err != nil {
		return nil, err
	}
	for m != nil {
		out = append(out, m.String())
		m, err = p.main.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindSpecial scans s for the next special-token literal at or after byte
// offset from. It skips over literals not present in allowed, resuming the
// scan one byte past the start of the rejected match (per the reference
// encode loop), and returns the absolute byte offset of the first *allowed*
// match along with its literal.
//
// Byte offsets are recovered with strings.Index rather than the match's own
// (rune-based) Index/Length fields: because the special alternation matches
// only exact literals, the engine's leftmost match is always s's leftmost
// occurrence of that literal, so a byte-level Index search for the matched
// string is exact and sidesteps rune/byte offset translation entirely.
func (p *Pattern) FindSpecial(s string, from int, allowed map[string]struct{}) (pos int, literal string, found bool, err error) {
	if p.special == nil || from >= len(s) {
		return 0, "", false, nil
	}
	searchFrom := from
	for searchFrom < len(s) {
		candidate := s[searchFrom:]
		m, mErr := p.special.FindStringMatch(candidate)
		if mErr != nil {
			return 0, "", false, mErr
		}
		if m == nil {
			return 0, "", false, nil
		}
		lit := m.String()
		offsetInCandidate := strings.Index(candidate, lit)
		abs := searchFrom + offsetInCandidate
		if _, ok := allowed[lit]; ok {
			return abs, lit, true, nil
		}
		searchFrom = abs + 1
	}
	return 0, "", false, nil
}
