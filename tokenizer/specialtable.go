package tokenizer

// SpecialTokenTable is the immutable mapping between special-token literals
// (e.g. "<|endoftext|>") and their reserved ids, plus its inverse. Ids are
// expected (by the caller assembling the core encoder) to fall outside the
// MergeTable's rank range.
type SpecialTokenTable struct {
	encoder map[string]Rank
	decoder map[Rank][]byte
}

// NewSpecialTokenTable builds a table from one or more literal->id maps,
// later maps overriding earlier ones for the same literal. This mirrors the
// reference binding's "extend_special_tokens" construction-time parameter:
// a caller extending a built-in catalog entry passes the catalog's map first
// and its own additions second.
func NewSpecialTokenTable(maps ...map[string]Rank) *SpecialTokenTable {
	enc := make(map[string]Rank)
	for _, m := range maps {
		for k, v := range m {
			enc[k] = v
		}
	}
	dec := make(map[Rank][]byte, len(enc))
	for k, v := range enc {
		dec[v] = []byte(k)
	}
	return &SpecialTokenTable{encoder: enc, decoder: dec}
}

// Rank returns the id for a special-token literal, if present.
func (t *SpecialTokenTable) Rank(literal string) (Rank, bool) {
	r, ok := t.encoder[literal]
	return r, ok
}

// Bytes returns the literal bytes for a special-token id, if present.
func (t *SpecialTokenTable) Bytes(id Rank) ([]byte, bool) {
	b, ok := t.decoder[id]
	return b, ok
}

// Literals returns every special-token literal known to the table.
func (t *SpecialTokenTable) Literals() []string {
	out := make([]string, 0, len(t.encoder))
	for k := range t.encoder {
		out = append(out, k)
	}
	return out
}

// Len returns the number of special tokens in the table.
func (t *SpecialTokenTable) Len() int { return len(t.encoder) }
