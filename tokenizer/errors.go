package tokenizer

import "errors"

// Sentinel errors returned by the core encoder. Richer variants wrap these
// via %w so callers can still match with errors.Is.
var (
	// ErrMalformedMergeTable is returned when a BFE payload cannot be parsed.
	ErrMalformedMergeTable = errors.New("tokenizer: malformed merge table")
	// ErrInvalidPattern is returned when the pre-tokenizer regex fails to compile.
	ErrInvalidPattern = errors.New("tokenizer: invalid pattern")
	// ErrUnknownToken is returned by single-token lookups that miss in both directions.
	ErrUnknownToken = errors.New("tokenizer: unknown token")
)
