package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"
)

// part is a half-open byte range into a piece, tagged with the rank of the
// pair that starts at it (if any). Transient scratch used only while
// bytePairMerge runs; never escapes it.
type part struct {
	start int
	rank  Rank
}

var partsPool = sync.Pool{New: func() any { return make([]part, 0, 64) }}

func acquireParts() []part  { return partsPool.Get().([]part)[:0] }
func releaseParts(p []part) { partsPool.Put(p) }

// bytePairMerge runs the rank-minimal greedy merge described by the reference
// tokenizer's core algorithm: at each step, merge the adjacent pair with the
// lowest rank (leftmost on ties), recomputing only the two ranks adjacent to
// the merge rather than rescanning the whole piece.
func bytePairMerge(mt *MergeTable, piece []byte, scratch []part) []part {
	parts := scratch
	minRank, minIdx := noRank, -1
	for i := 0; i < len(piece)-1; i++ {
		rank := noRank
		if r, ok := mt.Rank(piece[i : i+2]); ok {
			rank = r
		}
		if rank < minRank {
			minRank, minIdx = rank, i
		}
		parts = append(parts, part{start: i, rank: rank})
	}
	parts = append(parts, part{start: len(piece) - 1, rank: noRank})
	parts = append(parts, part{start: len(piece), rank: noRank})

	getRank := func(i int) Rank {
		if i+3 >= len(parts) {
			return noRank
		}
		if r, ok := mt.Rank(piece[parts[i].start:parts[i+3].start]); ok {
			return r
		}
		return noRank
	}

	for minRank != noRank {
		i := minIdx
		if i > 0 {
			parts[i-1].rank = getRank(i - 1)
		}
		parts[i].rank = getRank(i)
		parts = append(parts[:i+1], parts[i+2:]...)

		minRank, minIdx = noRank, -1
		for j := 0; j < len(parts)-1; j++ {
			if parts[j].rank < minRank {
				minRank, minIdx = parts[j].rank, j
			}
		}
	}
	return parts
}

// bytePairEncode appends the token ids for piece (len(piece) >= 1) to dst and
// returns the grown slice along with the scratch buffer for reuse.
func bytePairEncode(mt *MergeTable, piece []byte, dst []Rank, scratch []part) ([]Rank, []part) {
	if len(piece) == 1 {
		r := noRank
		if v, ok := mt.Rank(piece); ok {
			r = v
		}
		return append(dst, r), scratch
	}
	parts := bytePairMerge(mt, piece, scratch[:0])
	for i := 0; i < len(parts)-1; i++ {
		r := noRank
		if v, ok := mt.Rank(piece[parts[i].start:parts[i+1].start]); ok {
			r = v
		}
		dst = append(dst, r)
	}
	return dst, parts
}

// bytePairSplit returns the final sub-ranges of piece as byte slices, mirror
// image of bytePairEncode but returning bytes rather than ranks. Used only by
// tests; EncodeBytes's raw-tail path calls bytePairEncode instead.
func bytePairSplit(mt *MergeTable, piece []byte) [][]byte {
	if len(piece) == 0 {
		return nil
	}
	if len(piece) == 1 {
		return [][]byte{piece}
	}
	scratch := acquireParts()
	defer releaseParts(scratch)
	parts := bytePairMerge(mt, piece, scratch[:0])
	out := make([][]byte, 0, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		out = append(out, piece[parts[i].start:parts[i+1].start])
	}
	return out
}

// encodePiece is the fast-path/slow-path dispatch shared by every encode
// entry point: a whole-piece hit in the merge table short-circuits the merge.
func encodePiece(mt *MergeTable, piece []byte, dst []Rank, scratch []part) ([]Rank, []part) {
	if r, ok := mt.Rank(piece); ok {
		return append(dst, r), scratch
	}
	return bytePairEncode(mt, piece, dst, scratch)
}

// Encoder composes a MergeTable, a SpecialTokenTable, and a Pattern into the
// core encode/decode engine. Fully immutable after construction; safe for
// concurrent use by multiple callers on independent inputs.
type Encoder struct {
	merges   *MergeTable
	specials *SpecialTokenTable
	pattern  *Pattern
}

// NewEncoder assembles a core encoder from its three immutable components.
func NewEncoder(merges *MergeTable, specials *SpecialTokenTable, pattern *Pattern) *Encoder {
	return &Encoder{merges: merges, specials: specials, pattern: pattern}
}

// Merges returns the encoder's vocabulary table.
func (e *Encoder) Merges() *MergeTable { return e.merges }

// Specials returns the encoder's special-token table.
func (e *Encoder) Specials() *SpecialTokenTable { return e.specials }

// Pattern returns the encoder's compiled splitter.
func (e *Encoder) Pattern() *Pattern { return e.pattern }

// EncodeOrdinary tokenizes text with no special-token handling at all: every
// byte of text, including any substring that happens to match a special
// token's literal, is run through the ordinary split-and-merge path.
func (e *Encoder) EncodeOrdinary(text string) ([]Rank, error) {
	out, err := e.encodeOrdinaryInto(nil, text)
	return out, err
}

func (e *Encoder) encodeOrdinaryInto(dst []Rank, text string) ([]Rank, error) {
	if text == "" {
		return dst, nil
	}
	pieces, err := e.pattern.Pieces(text)
	if err != nil {
		return nil, err
	}
	scratch := acquireParts()
	defer releaseParts(scratch)
	for _, piece := range pieces {
		dst, scratch = encodePiece(e.merges, []byte(piece), dst, scratch)
	}
	return dst, nil
}

// Encode is the special-aware encode path: text is carved into regions
// between matches of the special-token alternation that are present in
// allowedSpecial, each region is run through the ordinary path, and matched
// special-token literals are emitted as their reserved id. lastPieceTokenLen
// is the number of tokens contributed by the final regex piece of the last
// non-special region processed (0 if the input ends on a special token);
// EncodeWithUnstable uses it to know how many trailing tokens might still
// change once more input arrives.
func (e *Encoder) Encode(text string, allowedSpecial map[string]struct{}) ([]Rank, int, error) {
	out := make([]Rank, 0, len(text)/3+1)
	scratch := acquireParts()
	defer releaseParts(scratch)

	lastPieceTokenLen := 0
	start := 0
	for {
		specialPos, specialLit, haveSpecial, err := e.pattern.FindSpecial(text, start, allowedSpecial)
		if err != nil {
			return nil, 0, err
		}

		end := len(text)
		if haveSpecial {
			end = specialPos
		}

		pieces, err := e.pattern.Pieces(text[start:end])
		if err != nil {
			return nil, 0, err
		}
		for _, piece := range pieces {
			before := len(out)
			out, scratch = encodePiece(e.merges, []byte(piece), out, scratch)
			lastPieceTokenLen = len(out) - before
		}

		if !haveSpecial {
			break
		}
		id, _ := e.specials.Rank(specialLit)
		out = append(out, id)
		start = specialPos + len(specialLit)
		lastPieceTokenLen = 0
	}
	return out, lastPieceTokenLen, nil
}

// EncodeSingleToken returns the id for bytes if it names exactly one token,
// checking the ordinary vocabulary first and, for valid-UTF-8 input, the
// special-token table second.
func (e *Encoder) EncodeSingleToken(b []byte) (Rank, error) {
	if r, ok := e.merges.Rank(b); ok {
		return r, nil
	}
	if utf8.Valid(b) {
		if r, ok := e.specials.Rank(string(b)); ok {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownToken, b)
}

// EncodeSinglePiece tokenizes b as a single ordinary piece: a whole-piece hit
// short-circuits to one token, otherwise b is byte-pair merged.
func (e *Encoder) EncodeSinglePiece(b []byte) []Rank {
	if len(b) == 0 {
		return nil
	}
	scratch := acquireParts()
	defer releaseParts(scratch)
	out, _ := encodePiece(e.merges, b, nil, scratch)
	return out
}

// DecodeBytes concatenates the decoded bytes of each token id, checking the
// ordinary vocabulary then the special-token table. It fails immediately on
// an unknown id rather than silently skipping it: a caller decoding a token
// sequence it did not itself produce almost always wants to know about
// corruption rather than get a silently-truncated string.
func (e *Encoder) DecodeBytes(tokens []Rank) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*3)
	for _, id := range tokens {
		if e.merges.AppendInto(&out, id) {
			continue
		}
		if b, ok := e.specials.Bytes(id); ok {
			out = append(out, b...)
			continue
		}
		return nil, fmt.Errorf("%w: id %d", ErrUnknownToken, id)
	}
	return out, nil
}

// DecodeSingleTokenBytes returns the decoded bytes for a single token id.
func (e *Encoder) DecodeSingleTokenBytes(id Rank) ([]byte, error) {
	var out []byte
	if e.merges.AppendInto(&out, id) {
		return out, nil
	}
	if b, ok := e.specials.Bytes(id); ok {
		return append([]byte(nil), b...), nil
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownToken, id)
}

// EncodeBytes tokenizes data that is not guaranteed to be valid UTF-8: the
// longest valid-UTF-8 prefix is run through the ordinary special-free encode
// path, and the remaining (possibly invalid) tail is merged against its own
// trailing tokens raw, so that a caller re-tokenizing an arbitrary byte
// range doesn't need to pre-validate it at a codepoint boundary.
func (e *Encoder) EncodeBytes(data []byte) ([]Rank, error) {
	if utf8.Valid(data) {
		return e.EncodeOrdinary(string(data))
	}

	k := longestValidUTF8Prefix(data)
	tokens, lastPieceTokenLen, err := e.Encode(string(data[:k]), nil)
	if err != nil {
		return nil, err
	}
	lastPieceTokenLen = extendTrailingWhitespaceRun(e, tokens, lastPieceTokenLen)

	if lastPieceTokenLen == 0 {
		// Nothing to re-merge with the invalid tail; append it as its own
		// raw byte-pair-encoded run.
		tail := append([]byte(nil), data[k:]...)
		scratch := acquireParts()
		defer releaseParts(scratch)
		tokens, _ = bytePairEncode(e.merges, tail, tokens, scratch)
		return tokens, nil
	}

	unstable := tokens[len(tokens)-lastPieceTokenLen:]
	tail, err := e.DecodeBytes(unstable)
	if err != nil {
		return nil, err
	}
	tokens = tokens[:len(tokens)-lastPieceTokenLen]
	tail = append(tail, data[k:]...)

	scratch := acquireParts()
	defer releaseParts(scratch)
	tokens, _ = bytePairEncode(e.merges, tail, tokens, scratch)
	return tokens, nil
}

func longestValidUTF8Prefix(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
