package tokenizer

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MergeTable is the immutable vocabulary: a bijection between byte sequences
// and ranks, plus a sorted index of the byte sequences used for prefix
// search in the unstable-completion path. It is built once, from a
// fully-materialized "BFE" text payload, and never mutated afterward.
type MergeTable struct {
	encoder      *RankMap
	decoder      tokenStore
	sortedTokens []string
}

// ParseMergeTableString parses a BFE payload held entirely in memory.
func ParseMergeTableString(s string) (*MergeTable, error) {
	return ParseMergeTable(strings.NewReader(s))
}

// ParseMergeTable parses a BFE payload: one line per entry, each line
// "<base64-of-bytes> <decimal-rank>". The core never reads this from a file
// or the network itself — that is the host's job (see cmd/tiktoken-go).
func ParseMergeTable(r io.Reader) (*MergeTable, error) {
	enc := NewRankMap(1 << 16)
	seenRank := make(map[Rank]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			return nil, malformedf(lineNo, "blank line")
		}
		sp := strings.IndexByte(line, ' ')
		if sp <= 0 {
			return nil, malformedf(lineNo, "missing separator")
		}
		b64, rankStr := line[:sp], line[sp+1:]
		tok, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, malformedf(lineNo, "bad base64: %v", err)
		}
		if len(tok) == 0 {
			return nil, malformedf(lineNo, "empty key")
		}
		rankU, err := strconv.ParseUint(rankStr, 10, 32)
		if err != nil {
			return nil, malformedf(lineNo, "bad rank: %v", err)
		}
		rank := Rank(rankU)
		key := string(tok)
		if _, dup := enc.Get(key); dup {
			return nil, malformedf(lineNo, "duplicate key")
		}
		if _, dup := seenRank[rank]; dup {
			return nil, malformedf(lineNo, "duplicate rank %d", rank)
		}
		seenRank[rank] = struct{}{}
		enc.Set(key, rank)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMergeTable, err)
	}
	if enc.Len() == 0 {
		return nil, fmt.Errorf("%w: empty merge table", ErrMalformedMergeTable)
	}
	return mergeTableFromRankMap(enc)
}

// mergeTableFromRankMap materializes the decoder TokenStore and sorted
// prefix-search index from an already-populated encoder map.
func mergeTableFromRankMap(enc *RankMap) (*MergeTable, error) {
	pairs := make([][2]any, 0, enc.Len())
	for _, k := range enc.Keys() {
		r, _ := enc.Get(k)
		pairs = append(pairs, [2]any{[]byte(k), r})
	}
	dec, err := newTokenStore(pairs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMergeTable, err)
	}

	sorted := enc.Keys()
	sort.Strings(sorted)

	return &MergeTable{encoder: enc, decoder: dec, sortedTokens: sorted}, nil
}

func malformedf(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedMergeTable, line, fmt.Sprintf(format, args...))
}

// Rank returns the rank for a byte sequence, if present.
func (t *MergeTable) Rank(b []byte) (Rank, bool) { return t.encoder.Get(string(b)) }

// Len returns the number of entries in the table.
func (t *MergeTable) Len() int { return t.encoder.Len() }

// SortedTokens returns the table's byte sequences in lexicographic order.
func (t *MergeTable) SortedTokens() []string { return t.sortedTokens }

// AppendInto appends the decoded bytes for id to dst, reporting whether id
// was present in this table (as opposed to the special-token table).
func (t *MergeTable) AppendInto(dst *[]byte, id Rank) bool { return t.decoder.AppendInto(dst, id) }
