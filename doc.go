// Package tiktoken is a byte-pair-encoding tokenizer compatible with the
// family of encodings used by OpenAI's GPT-class models: gpt2, r50k_base,
// p50k_base, p50k_edit, and cl100k_base. It wraps the core encode/decode
// engine in package tokenizer with a built-in catalog of those five
// encodings, a model-name lookup table, and allowed/disallowed special-token
// policy resolution.
//
// The package never performs file or network I/O itself; callers supply a
// merge-table payload (an io.Reader or string) and, for custom encodings, a
// pattern string and special-token map. See cmd/tiktoken-go for a CLI that
// loads a merge table from disk and drives this package from the command
// line.
package tiktoken
