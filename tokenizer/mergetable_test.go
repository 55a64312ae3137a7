package tokenizer

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func bfeLine(b []byte, rank int) string {
	return base64.StdEncoding.EncodeToString(b) + " " + strconv.Itoa(rank)
}

func TestParseMergeTableBasic(t *testing.T) {
	payload := strings.Join([]string{
		bfeLine([]byte("a"), 0),
		bfeLine([]byte("b"), 1),
		bfeLine([]byte("ab"), 2),
	}, "\n")

	mt, err := ParseMergeTableString(payload)
	if err != nil {
		t.Fatalf("ParseMergeTableString: %v", err)
	}
	if mt.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", mt.Len())
	}
	if r, ok := mt.Rank([]byte("ab")); !ok || r != 2 {
		t.Fatalf("Rank(ab) = %d, %v; want 2, true", r, ok)
	}

	var dst []byte
	if !mt.AppendInto(&dst, 2) {
		t.Fatalf("AppendInto(2) missed")
	}
	if string(dst) != "ab" {
		t.Fatalf("AppendInto(2) = %q, want \"ab\"", dst)
	}
}

func TestParseMergeTableDuplicateKey(t *testing.T) {
	payload := strings.Join([]string{
		bfeLine([]byte("a"), 0),
		bfeLine([]byte("a"), 1),
	}, "\n")
	_, err := ParseMergeTableString(payload)
	if !errors.Is(err, ErrMalformedMergeTable) {
		t.Fatalf("err = %v, want ErrMalformedMergeTable", err)
	}
}

func TestParseMergeTableDuplicateRank(t *testing.T) {
	payload := strings.Join([]string{
		bfeLine([]byte("a"), 0),
		bfeLine([]byte("b"), 0),
	}, "\n")
	_, err := ParseMergeTableString(payload)
	if !errors.Is(err, ErrMalformedMergeTable) {
		t.Fatalf("err = %v, want ErrMalformedMergeTable", err)
	}
}

func TestParseMergeTableBlankLineIsError(t *testing.T) {
	payload := strings.Join([]string{
		bfeLine([]byte("a"), 0),
		"",
		bfeLine([]byte("b"), 1),
	}, "\n")
	_, err := ParseMergeTableString(payload)
	if !errors.Is(err, ErrMalformedMergeTable) {
		t.Fatalf("err = %v, want ErrMalformedMergeTable", err)
	}
}

func TestParseMergeTableBadBase64(t *testing.T) {
	_, err := ParseMergeTableString("not-valid-base64!! 0")
	if !errors.Is(err, ErrMalformedMergeTable) {
		t.Fatalf("err = %v, want ErrMalformedMergeTable", err)
	}
}

func TestParseMergeTableEmpty(t *testing.T) {
	_, err := ParseMergeTableString("")
	if !errors.Is(err, ErrMalformedMergeTable) {
		t.Fatalf("err = %v, want ErrMalformedMergeTable", err)
	}
}

func TestParseMergeTableSortedTokens(t *testing.T) {
	payload := strings.Join([]string{
		bfeLine([]byte("z"), 0),
		bfeLine([]byte("a"), 1),
		bfeLine([]byte("m"), 2),
	}, "\n")
	mt, err := ParseMergeTableString(payload)
	if err != nil {
		t.Fatalf("ParseMergeTableString: %v", err)
	}
	sorted := mt.SortedTokens()
	want := []string{"a", "m", "z"}
	for i, w := range want {
		if sorted[i] != w {
			t.Fatalf("SortedTokens()[%d] = %q, want %q", i, sorted[i], w)
		}
	}
}
