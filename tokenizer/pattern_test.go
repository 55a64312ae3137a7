package tokenizer

import "testing"

const gpt2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

func TestPatternPiecesSplitsWords(t *testing.T) {
	p, err := CompilePattern(gpt2Pattern, nil)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	pieces, err := p.Pieces("Hello world")
	if err != nil {
		t.Fatalf("Pieces: %v", err)
	}
	want := []string{"Hello", " world"}
	if len(pieces) != len(want) {
		t.Fatalf("Pieces = %v, want %v", pieces, want)
	}
	for i, w := range want {
		if pieces[i] != w {
			t.Fatalf("Pieces[%d] = %q, want %q", i, pieces[i], w)
		}
	}
}

func TestPatternTrailingWhitespaceLookahead(t *testing.T) {
	p, err := CompilePattern(gpt2Pattern, nil)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	// "\s+(?!\S)" should keep a run of trailing whitespace whole rather than
	// leaving the final space to be absorbed by the next word's " ?\p{L}+".
	pieces, err := p.Pieces("a  b")
	if err != nil {
		t.Fatalf("Pieces: %v", err)
	}
	want := []string{"a", " ", " b"}
	if len(pieces) != len(want) {
		t.Fatalf("Pieces = %v, want %v", pieces, want)
	}
	for i, w := range want {
		if pieces[i] != w {
			t.Fatalf("Pieces[%d] = %q, want %q", i, pieces[i], w)
		}
	}
}

func TestPatternFindSpecialSkipsDisallowed(t *testing.T) {
	p, err := CompilePattern(gpt2Pattern, []string{"<|endoftext|>", "<|fim|>"})
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	text := "before <|fim|> after <|endoftext|> tail"
	allowed := map[string]struct{}{"<|endoftext|>": {}}

	pos, lit, found, err := p.FindSpecial(text, 0, allowed)
	if err != nil {
		t.Fatalf("FindSpecial: %v", err)
	}
	if !found {
		t.Fatalf("FindSpecial did not find the allowed literal")
	}
	if lit != "<|endoftext|>" {
		t.Fatalf("FindSpecial literal = %q, want <|endoftext|>", lit)
	}
	wantPos := len("before <|fim|> after ")
	if pos != wantPos {
		t.Fatalf("FindSpecial pos = %d, want %d", pos, wantPos)
	}
}

func TestPatternFindSpecialNoneAllowed(t *testing.T) {
	p, err := CompilePattern(gpt2Pattern, []string{"<|endoftext|>"})
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	_, _, found, err := p.FindSpecial("no specials here", 0, map[string]struct{}{})
	if err != nil {
		t.Fatalf("FindSpecial: %v", err)
	}
	if found {
		t.Fatalf("FindSpecial unexpectedly found a match")
	}
}
