package tokenizer

import (
	"sort"
	"unicode/utf8"
)

// isAllTrailingSpace reports whether every byte of b is a plain ASCII space,
// LF, or tab — the set the reference tokenizer treats as "still part of a
// trailing whitespace run that a following character could extend."
func isAllTrailingSpace(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\n' && c != '\t' {
			return false
		}
	}
	return len(b) > 0
}

// extendTrailingWhitespaceRun implements the §4.7 step-2 whitespace fix-up:
// patterns built from \s*[\r\n]+ or \s+(?!\S) can put a regex split boundary
// in the middle of a run of trailing whitespace, so before treating the last
// lastPieceTokenLen tokens as "unstable" we walk further left while earlier
// tokens are themselves pure whitespace.
func extendTrailingWhitespaceRun(e *Encoder, tokens []Rank, lastPieceTokenLen int) int {
	if lastPieceTokenLen == 0 || lastPieceTokenLen > len(tokens) {
		return lastPieceTokenLen
	}
	idx := len(tokens) - lastPieceTokenLen
	b, err := e.DecodeSingleTokenBytes(tokens[idx])
	if err != nil || !isAllTrailingSpace(b) {
		return lastPieceTokenLen
	}
	for idx > 0 {
		prev, err := e.DecodeSingleTokenBytes(tokens[idx-1])
		if err != nil || !isAllTrailingSpace(prev) {
			break
		}
		idx--
	}
	return len(tokens) - idx
}

// sortedTokensFrom returns the index of the first entry in sorted that is >=
// prefix lexicographically, i.e. the left edge of any run of entries that
// could begin with prefix.
func sortedTokensFrom(sorted []string, prefix string) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= prefix })
}

// EncodeWithUnstable runs the special-aware encode path and then enumerates
// the "unstable" completions of its trailing tokens: token sequences whose
// decoded bytes begin with the tail of text that might merge differently
// once more input arrives. This drives streaming and prompt-boundary
// analysis; it is a heuristic over the cases the reference binding itself
// handles, not a claim of exhaustiveness over every tokenization a retrained
// vocabulary could ever produce.
func (e *Encoder) EncodeWithUnstable(text string, allowedSpecial map[string]struct{}) ([]Rank, [][]Rank, error) {
	tokens, lastPieceTokenLen, err := e.Encode(text, allowedSpecial)
	if err != nil {
		return nil, nil, err
	}
	if lastPieceTokenLen == 0 {
		return tokens, nil, nil
	}

	lastPieceTokenLen = extendTrailingWhitespaceRun(e, tokens, lastPieceTokenLen)

	unstable := append([]Rank(nil), tokens[len(tokens)-lastPieceTokenLen:]...)
	tokens = tokens[:len(tokens)-lastPieceTokenLen]

	unstableBytes, err := e.DecodeBytes(unstable)
	if err != nil {
		return nil, nil, err
	}
	if len(unstableBytes) == 0 {
		return tokens, nil, nil
	}

	seen := make(map[string]struct{})
	var completions [][]Rank
	add := func(cand []Rank) {
		key := string(encodeRankKey(cand))
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		completions = append(completions, cand)
	}

	sorted := e.merges.SortedTokens()

	// Prefix enumeration: any vocabulary entry that begins with the whole
	// unstable tail is a one-token completion on its own.
	for i := sortedTokensFrom(sorted, string(unstableBytes)); i < len(sorted); i++ {
		entry := sorted[i]
		if !hasPrefixStr(entry, string(unstableBytes)) {
			break
		}
		if r, ok := e.merges.Rank([]byte(entry)); ok {
			add([]Rank{r})
		}
	}

	// Straddle enumeration: the "real" continuation token may start inside
	// the unstable tail and extend past it.
	for i := 1; i < len(unstableBytes); i++ {
		prefix := unstableBytes[:i]
		suffix := string(unstableBytes[i:])
		for j := sortedTokensFrom(sorted, suffix); j < len(sorted); j++ {
			entry := sorted[j]
			if !hasPrefixStr(entry, suffix) {
				break
			}
			possibility := append(append([]byte(nil), prefix...), entry...)

			var candTokens []Rank
			if utf8.Valid(possibility) {
				candTokens, err = e.EncodeOrdinary(string(possibility))
				if err != nil {
					return nil, nil, err
				}
			} else {
				scratch := acquireParts()
				candTokens, scratch = bytePairEncode(e.merges, possibility, nil, scratch)
				releaseParts(scratch)
			}

			cand := make([]Rank, 0, len(candTokens))
			decoded := 0
			for _, t := range candTokens {
				cand = append(cand, t)
				b, err := e.DecodeSingleTokenBytes(t)
				if err != nil {
					return nil, nil, err
				}
				decoded += len(b)
				if decoded >= len(unstableBytes) {
					break
				}
			}
			add(cand)
		}
	}

	// Trailing-whitespace boundary fix: the regex's \s+(?!\S) can force a
	// split right before the final character of the unstable tail.
	if len(unstableBytes) > 1 {
		_, size := utf8.DecodeLastRune(unstableBytes)
		if size > 0 {
			last := unstableBytes[len(unstableBytes)-size:]
			if isSpaceRune(last) {
				head := unstableBytes[:len(unstableBytes)-size]
				scratch := acquireParts()
				var cand []Rank
				cand, scratch = bytePairEncode(e.merges, head, cand, scratch)
				cand, scratch = bytePairEncode(e.merges, last, cand, scratch)
				releaseParts(scratch)
				add(cand)
			}
		}
	}

	return tokens, completions, nil
}

func hasPrefixStr(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func isSpaceRune(b []byte) bool {
	r, _ := utf8.DecodeRune(b)
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// encodeRankKey turns a token sequence into a string usable as a dedup map
// key without pulling in a generic hashing dependency for four uint32s worth
// of data.
func encodeRankKey(tokens []Rank) []byte {
	out := make([]byte, len(tokens)*4)
	for i, t := range tokens {
		out[i*4] = byte(t >> 24)
		out[i*4+1] = byte(t >> 16)
		out[i*4+2] = byte(t >> 8)
		out[i*4+3] = byte(t)
	}
	return out
}
