// Command tiktoken-go is a thin command-line driver over package tiktoken.
// It is the host-side code that performs the file I/O the core library
// deliberately never does: it opens the merge-table file and hands the library
// the open file as an io.Reader, and it reads an optional special-token map
// from disk into memory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tiktoken "github.com/openharbor/tiktoken-go"
	"github.com/openharbor/tiktoken-go/tokenizer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tiktoken-go:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("tiktoken-go", flag.ContinueOnError)
	encodingName := fs.String("encoding", "cl100k_base", "built-in encoding name (gpt2, r50k_base, p50k_base, p50k_edit, cl100k_base)")
	bfePath := fs.String("bfe", "", "path to the BFE merge-table file (required)")
	patternFlag := fs.String("pattern", "", "override pattern: a literal regex, or a path to a file containing one")
	specialPath := fs.String("special", "", "path to a JSON object of extra literal -> id special tokens")
	allowSpecial := fs.String("allow-special", "", `comma-separated literals to allow in "encode", or "all"`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	verb := fs.Arg(0)
	if verb != "encode" && verb != "decode" {
		return fmt.Errorf("usage: tiktoken-go [flags] encode|decode")
	}
	if *bfePath == "" {
		return fmt.Errorf("-bfe is required")
	}

	name := tiktoken.EncodingName(*encodingName)

	extraSpecial, err := loadSpecialMap(*specialPath)
	if err != nil {
		return err
	}

	var enc *tiktoken.Encoding
	if *patternFlag == "" {
		bfeFile, err := os.Open(*bfePath)
		if err != nil {
			return err
		}
		defer bfeFile.Close()
		enc, err = tiktoken.LoadEncoding(name, bfeFile, extraSpecial)
		if err != nil {
			return err
		}
	} else {
		patStr, err := resolvePattern(*patternFlag)
		if err != nil {
			return err
		}
		specials, err := tiktoken.CatalogSpecials(name)
		if err != nil {
			return err
		}
		for lit, id := range extraSpecial {
			specials[lit] = id
		}
		bfeFile, err := os.Open(*bfePath)
		if err != nil {
			return err
		}
		defer bfeFile.Close()
		mergeTable, err := tokenizer.ParseMergeTable(bfeFile)
		if err != nil {
			return err
		}
		enc, err = tiktoken.NewEncoding(string(name), mergeTable, specials, patStr)
		if err != nil {
			return err
		}
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	switch verb {
	case "encode":
		allowed, err := parseAllowSpecial(*allowSpecial)
		if err != nil {
			return err
		}
		tokens, err := enc.Encode(string(input), allowed, nil)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(tokens)
	default: // decode
		var tokens []uint32
		if err := json.Unmarshal(input, &tokens); err != nil {
			return fmt.Errorf("parsing token ids: %w", err)
		}
		decoded, err := enc.Decode(tokens)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(string(decoded))
	}
}

// resolvePattern treats patternFlag as a path if it names an existing file,
// and as a literal regex string otherwise.
func resolvePattern(patternFlag string) (string, error) {
	if data, err := os.ReadFile(patternFlag); err == nil {
		return strings.TrimRight(string(data), "\n"), nil
	}
	return patternFlag, nil
}

func loadSpecialMap(path string) (map[string]uint32, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]uint32{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing -special: %w", err)
	}
	return out, nil
}

func parseAllowSpecial(s string) (tiktoken.SpecialTokenPolicy, error) {
	if s == "" {
		return nil, nil
	}
	if s == "all" {
		return tiktoken.SpecialTokenSetAll, nil
	}
	set := tiktoken.SpecialTokenSet{}
	for _, lit := range strings.Split(s, ",") {
		set[lit] = struct{}{}
	}
	return set, nil
}
