package tiktoken

import (
	"regexp"
	"sort"
	"strings"
)

// SpecialTokenSet is an explicit set of special-token literals to allow or
// disallow in a call to Encode.
type SpecialTokenSet map[string]struct{}

// SpecialTokenPolicy is either a SpecialTokenSet or the SpecialTokenSetAll
// sentinel. A nil value means "the empty set" for an allowed argument and
// "every special token this encoding knows that is not explicitly allowed"
// for a disallowed argument, matching Encode's zero-value default.
type SpecialTokenPolicy any

type allSpecialTokens struct{}

// SpecialTokenSetAll means "every special-token literal this Encoding knows
// about" wherever it's passed as an allowed or disallowed argument.
var SpecialTokenSetAll SpecialTokenPolicy = allSpecialTokens{}

func resolveSpecialSet(policy SpecialTokenPolicy, all []string) (map[string]struct{}, error) {
	switch v := policy.(type) {
	case nil:
		return map[string]struct{}{}, nil
	case SpecialTokenSet:
		out := make(map[string]struct{}, len(v))
		for lit := range v {
			out[lit] = struct{}{}
		}
		return out, nil
	case allSpecialTokens:
		out := make(map[string]struct{}, len(all))
		for _, lit := range all {
			out[lit] = struct{}{}
		}
		return out, nil
	default:
		return nil, ErrInvalidAllowedSpecialArgument
	}
}

// resolveAllowedDisallowed implements §4.10's policy resolution: allowed
// defaults to the empty set, disallowed defaults to "every special token not
// explicitly allowed." It returns the resolved allowed-literal set (fed
// straight to tokenizer.Encoder.Encode) and a compiled alternation over the
// disallowed literals used to scan text up front.
func resolveAllowedDisallowed(allowedPolicy, disallowedPolicy SpecialTokenPolicy, all []string) (allowed map[string]struct{}, disallowedRe *regexp.Regexp, err error) {
	allowed, err = resolveSpecialSet(allowedPolicy, all)
	if err != nil {
		return nil, nil, err
	}

	var disallowedSet map[string]struct{}
	if disallowedPolicy == nil {
		disallowedSet = make(map[string]struct{}, len(all))
		for _, lit := range all {
			if _, ok := allowed[lit]; !ok {
				disallowedSet[lit] = struct{}{}
			}
		}
	} else {
		disallowedSet, err = resolveSpecialSet(disallowedPolicy, all)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := disallowedPolicy.(allSpecialTokens); ok {
			for lit := range allowed {
				delete(disallowedSet, lit)
			}
		}
	}

	if len(disallowedSet) == 0 {
		return allowed, nil, nil
	}
	literals := make([]string, 0, len(disallowedSet))
	for lit := range disallowedSet {
		literals = append(literals, lit)
	}
	sort.Slice(literals, func(i, j int) bool { return len(literals[i]) > len(literals[j]) })
	escaped := make([]string, len(literals))
	for i, lit := range literals {
		escaped[i] = regexp.QuoteMeta(lit)
	}
	disallowedRe, err = regexp.Compile("(" + strings.Join(escaped, "|") + ")")
	if err != nil {
		return nil, nil, err
	}
	return allowed, disallowedRe, nil
}

// checkDisallowed scans text for the first disallowed-special-token literal,
// failing with DisallowedSpecialTokenFoundError if one is found.
func checkDisallowed(text string, disallowedRe *regexp.Regexp) error {
	if disallowedRe == nil {
		return nil
	}
	if m := disallowedRe.FindString(text); m != "" {
		return &DisallowedSpecialTokenFoundError{Literal: m}
	}
	return nil
}
