// Package tokenizer implements the core byte-pair-encoding engine: vocabulary
// storage, the rank-minimal merge algorithm, the pre-tokenizer regex, and the
// special-token-aware and unstable-completion encode paths. It never touches
// a file or the network; callers hand it already-materialized merge-table
// payloads and pattern strings.
package tokenizer

// NewMergeTableFromPairs builds a MergeTable directly from (bytes, rank)
// pairs, bypassing the BFE text format. Exposed for callers (and tests) that
// already have a vocabulary in memory rather than as a serialized payload.
func NewMergeTableFromPairs(pairs map[string]Rank) (*MergeTable, error) {
	enc := NewRankMap(len(pairs))
	for k, v := range pairs {
		enc.Set(k, v)
	}
	return mergeTableFromRankMap(enc)
}
