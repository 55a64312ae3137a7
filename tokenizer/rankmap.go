package tokenizer

import "github.com/cespare/xxhash/v2"

// Rank represents the priority/rank of a token in the merge table. Lower
// ranks merge first; in this vocabulary format the rank also serves as the
// token id.
type Rank = uint32

// noRank is the sentinel used internally by the byte merger to mean "this
// pair does not merge". RankMap.Get reports an absent key with (0, false);
// callers substitute noRank themselves.
const noRank Rank = ^Rank(0)

// RankMap is an open-addressing hash table from byte-sequence (as string) to
// Rank, hashed with xxhash rather than Go's built-in map hash. The encoder
// table is write-once at construction and read-hot afterward: every fast-path
// lookup in Encode and every inner-loop lookup in bytePairMerge goes through
// it, and its keys are almost always short (a handful of bytes), which is
// exactly the case xxhash is tuned for relative to the AES/SipHash-family
// hash Go's builtin map uses to defend against hash-flooding attacks this
// workload never faces.
type RankMap struct {
	buckets []rankEntry
	mask    uint64
	size    int
}

type rankEntry struct {
	key    string
	rank   Rank
	filled bool
}

// NewRankMap creates a RankMap sized for at least capHint entries.
func NewRankMap(capHint int) *RankMap {
	n := uint64(8)
	for n < uint64(capHint)*2 {
		n <<= 1
	}
	return &RankMap{
		buckets: make([]rankEntry, n),
		mask:    n - 1,
	}
}

func (m *RankMap) probe(key string) int {
	h := xxhash.Sum64String(key)
	i := h & m.mask
	for {
		e := &m.buckets[i]
		if !e.filled || e.key == key {
			return int(i)
		}
		i = (i + 1) & m.mask
	}
}

// Get returns the rank for key and whether it was present.
func (m *RankMap) Get(key string) (Rank, bool) {
	i := m.probe(key)
	e := &m.buckets[i]
	if !e.filled {
		return 0, false
	}
	return e.rank, true
}

// Set inserts or overwrites key's rank, growing the table if the load factor
// would exceed one half.
func (m *RankMap) Set(key string, r Rank) {
	if (m.size+1)*2 > len(m.buckets) {
		m.grow()
	}
	i := m.probe(key)
	e := &m.buckets[i]
	if !e.filled {
		m.size++
	}
	e.key, e.rank, e.filled = key, r, true
}

func (m *RankMap) grow() {
	old := m.buckets
	m.buckets = make([]rankEntry, len(old)*2)
	m.mask = uint64(len(m.buckets)) - 1
	for _, e := range old {
		if !e.filled {
			continue
		}
		i := m.probe(e.key)
		m.buckets[i] = e
	}
}

// Len returns the number of entries stored.
func (m *RankMap) Len() int { return m.size }

// Keys returns all stored keys in unspecified order. Used once, at
// construction, to build MergeTable.sortedTokens.
func (m *RankMap) Keys() []string {
	out := make([]string, 0, m.size)
	for _, e := range m.buckets {
		if e.filled {
			out = append(out, e.key)
		}
	}
	return out
}
