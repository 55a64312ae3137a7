package tiktoken

import (
	"fmt"
	"io"
	"sort"

	"github.com/openharbor/tiktoken-go/tokenizer"
)

// Encoding is the public façade over the core encoder: one compiled
// vocabulary, one pattern, one special-token table, addressed by name.
type Encoding struct {
	name            string
	core            *tokenizer.Encoder
	specialLiterals []string
}

// NewEncoding builds an Encoding from an already-parsed merge table, an
// explicit special-token map, and a pattern string. Use this to construct a
// custom encoding; LoadEncoding is the convenience path for the five
// built-in ones.
func NewEncoding(name string, mergeTable *tokenizer.MergeTable, specials map[string]uint32, patStr string) (*Encoding, error) {
	specialTable := tokenizer.NewSpecialTokenTable(specials)
	literals := specialTable.Literals()
	pattern, err := tokenizer.CompilePattern(patStr, literals)
	if err != nil {
		return nil, err
	}
	core := tokenizer.NewEncoder(mergeTable, specialTable, pattern)
	sort.Strings(literals)
	return &Encoding{name: name, core: core, specialLiterals: literals}, nil
}

// LoadEncoding builds one of the five built-in encodings from a BFE merge
// table payload, optionally extending its stock special tokens with
// extraSpecial (e.g. an application-specific control token alongside
// <|endoftext|>).
func LoadEncoding(name EncodingName, bfe io.Reader, extraSpecial map[string]uint32) (*Encoding, error) {
	entry, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncodingName, name)
	}
	mergeTable, err := tokenizer.ParseMergeTable(bfe)
	if err != nil {
		return nil, err
	}
	specials := make(map[string]uint32, len(entry.specials)+len(extraSpecial))
	for lit, id := range entry.specials {
		specials[lit] = id
	}
	for lit, id := range extraSpecial {
		specials[lit] = id
	}
	return NewEncoding(string(name), mergeTable, specials, entry.pattern)
}

// Name returns the encoding's name.
func (e *Encoding) Name() string { return e.name }

// Encode is the special-aware encode path. allowedSpecial and
// disallowedSpecial are each either a SpecialTokenSet or SpecialTokenSetAll;
// see §4.10's policy resolution. A zero-value (nil) allowedSpecial means "no
// special tokens allowed," and a nil disallowedSpecial means "every special
// token not explicitly allowed is disallowed."
func (e *Encoding) Encode(text string, allowedSpecial, disallowedSpecial SpecialTokenPolicy) ([]uint32, error) {
	allowed, disallowedRe, err := resolveAllowedDisallowed(allowedSpecial, disallowedSpecial, e.specialLiterals)
	if err != nil {
		return nil, err
	}
	if err := checkDisallowed(text, disallowedRe); err != nil {
		return nil, err
	}
	tokens, _, err := e.core.Encode(text, allowed)
	return tokens, err
}

// EncodeOrdinary tokenizes text with no special-token handling at all.
func (e *Encoding) EncodeOrdinary(text string) []uint32 {
	tokens, _ := e.core.EncodeOrdinary(text)
	return tokens
}

// EncodeWithUnstable runs Encode and additionally enumerates unstable
// completions of the trailing tokens, for streaming/prompt-boundary use.
func (e *Encoding) EncodeWithUnstable(text string, allowedSpecial, disallowedSpecial SpecialTokenPolicy) ([]uint32, [][]uint32, error) {
	allowed, disallowedRe, err := resolveAllowedDisallowed(allowedSpecial, disallowedSpecial, e.specialLiterals)
	if err != nil {
		return nil, nil, err
	}
	if err := checkDisallowed(text, disallowedRe); err != nil {
		return nil, nil, err
	}
	return e.core.EncodeWithUnstable(text, allowed)
}

// EncodeSingleToken returns the id for bytes if it names exactly one token.
func (e *Encoding) EncodeSingleToken(b []byte) (uint32, error) { return e.core.EncodeSingleToken(b) }

// EncodeSinglePiece tokenizes b as a single ordinary piece.
func (e *Encoding) EncodeSinglePiece(b []byte) []uint32 { return e.core.EncodeSinglePiece(b) }

// EncodeBytes tokenizes data that is not guaranteed to be valid UTF-8.
func (e *Encoding) EncodeBytes(data []byte) ([]uint32, error) { return e.core.EncodeBytes(data) }

// Decode concatenates the decoded bytes of each token id.
func (e *Encoding) Decode(tokens []uint32) ([]byte, error) { return e.core.DecodeBytes(tokens) }

// DecodeSingleTokenBytes returns the decoded bytes for a single token id.
func (e *Encoding) DecodeSingleTokenBytes(id uint32) ([]byte, error) {
	return e.core.DecodeSingleTokenBytes(id)
}

// TokenByteValues returns every ordinary vocabulary entry's bytes, sorted.
func (e *Encoding) TokenByteValues() [][]byte {
	sorted := e.core.Merges().SortedTokens()
	out := make([][]byte, len(sorted))
	for i, s := range sorted {
		out[i] = []byte(s)
	}
	return out
}
