package tokenizer

import "testing"

func newPrefixToyEncoder(t *testing.T) *Encoder {
	t.Helper()
	mt := toyMergeTable(t, map[string]Rank{
		"h": 3, "e": 4, "l": 5, "o": 6,
		"hel": 0, "hell": 1, "hello": 2,
	})
	specials := NewSpecialTokenTable(nil)
	p, err := CompilePattern(gpt2Pattern, nil)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	return NewEncoder(mt, specials, p)
}

func containsCompletion(completions [][]Rank, want []Rank) bool {
	for _, c := range completions {
		if len(c) != len(want) {
			continue
		}
		ok := true
		for i := range want {
			if c[i] != want[i] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// TestEncodeWithUnstablePrefixEnumeration mirrors the "h-e-l" toy vocabulary
// scenario: an input ending mid-word ("hel") is unstable because more input
// could turn it into "hell" or "hello", so all three single-token
// completions must be enumerated, and the unstable token itself must not
// appear in the stable prefix.
func TestEncodeWithUnstablePrefixEnumeration(t *testing.T) {
	e := newPrefixToyEncoder(t)
	stable, completions, err := e.EncodeWithUnstable("hel", nil)
	if err != nil {
		t.Fatalf("EncodeWithUnstable: %v", err)
	}
	if len(stable) != 0 {
		t.Fatalf("stable tokens = %v, want empty (the whole input is unstable)", stable)
	}
	for _, want := range [][]Rank{{0}, {1}, {2}} {
		if !containsCompletion(completions, want) {
			t.Fatalf("completions %v missing %v", completions, want)
		}
	}
}

func newStraddleToyEncoder(t *testing.T) *Encoder {
	t.Helper()
	mt := toyMergeTable(t, map[string]Rank{
		"a": 0, "b": 1, "c": 2, "bc": 3, "q": 4,
	})
	specials := NewSpecialTokenTable(nil)
	p, err := CompilePattern(gpt2Pattern, nil)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	return NewEncoder(mt, specials, p)
}

// TestEncodeWithUnstableStraddleEnumeration hits the straddle branch (§4.7
// step 6): no vocabulary entry begins with the whole unstable tail "ab", so
// prefix enumeration alone finds nothing, but splitting the tail at i=1 and
// looking for entries beginning with its suffix "b" turns up "bc", which
// straddles the boundary and yields a real/1-rank completion ("a"+"bc" byte
// pair merges to ["a","bc"]) that only the straddle scan can find.
func TestEncodeWithUnstableStraddleEnumeration(t *testing.T) {
	e := newStraddleToyEncoder(t)
	stable, completions, err := e.EncodeWithUnstable("ab", nil)
	if err != nil {
		t.Fatalf("EncodeWithUnstable: %v", err)
	}
	if len(stable) != 0 {
		t.Fatalf("stable tokens = %v, want empty (the whole input is unstable)", stable)
	}
	if !containsCompletion(completions, []Rank{0, 3}) {
		t.Fatalf("completions %v missing the straddle completion [0 3] (\"a\"+\"bc\")", completions)
	}
}

func newBoundaryToyEncoder(t *testing.T) *Encoder {
	t.Helper()
	mt := toyMergeTable(t, map[string]Rank{
		" ": 0, "  ": 1,
	})
	specials := NewSpecialTokenTable(nil)
	p, err := CompilePattern(gpt2Pattern, nil)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	return NewEncoder(mt, specials, p)
}

// TestEncodeWithUnstableTrailingWhitespaceBoundaryFix hits the boundary-fix
// branch (§4.7 step 7): the whole two-space run is one vocabulary entry, so
// the ordinary path (and prefix/straddle enumeration, which re-encode
// possibilities through the pattern-aware path) always merge it into a
// single token. The boundary fix instead encodes the head and the final
// rune separately, which this vocabulary can't merge back together, so it
// contributes a genuinely distinct two-token completion.
func TestEncodeWithUnstableTrailingWhitespaceBoundaryFix(t *testing.T) {
	e := newBoundaryToyEncoder(t)
	stable, completions, err := e.EncodeWithUnstable("  ", nil)
	if err != nil {
		t.Fatalf("EncodeWithUnstable: %v", err)
	}
	if len(stable) != 0 {
		t.Fatalf("stable tokens = %v, want empty (the whole input is unstable)", stable)
	}
	if !containsCompletion(completions, []Rank{1}) {
		t.Fatalf("completions %v missing the jointly-merged double-space token [1]", completions)
	}
	if !containsCompletion(completions, []Rank{0, 0}) {
		t.Fatalf("completions %v missing the boundary fix's independently-encoded [0 0]", completions)
	}
}

// TestEncodeWithUnstableStableInputHasNoCompletions checks that input ending
// on a special token (lastPieceTokenLen == 0) reports no completions.
func TestEncodeWithUnstableStableInputHasNoCompletions(t *testing.T) {
	mt := toyMergeTable(t, map[string]Rank{"a": 0})
	specials := NewSpecialTokenTable(map[string]Rank{"<|endoftext|>": 100})
	p, err := CompilePattern(gpt2Pattern, specials.Literals())
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	e := NewEncoder(mt, specials, p)

	allowed := map[string]struct{}{"<|endoftext|>": {}}
	stable, completions, err := e.EncodeWithUnstable("a<|endoftext|>", allowed)
	if err != nil {
		t.Fatalf("EncodeWithUnstable: %v", err)
	}
	if completions != nil {
		t.Fatalf("completions = %v, want nil", completions)
	}
	want := []Rank{0, 100}
	if len(stable) != len(want) || stable[0] != want[0] || stable[1] != want[1] {
		t.Fatalf("stable = %v, want %v", stable, want)
	}
}
