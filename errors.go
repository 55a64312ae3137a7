package tiktoken

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEncodingName is returned by LoadEncoding for a name outside
	// the built-in catalog.
	ErrUnknownEncodingName = errors.New("tiktoken: unknown encoding name")
	// ErrUnknownModelName is returned by EncodingNameForModel for a model
	// not present in the model-name table.
	ErrUnknownModelName = errors.New("tiktoken: unknown model name")
	// ErrDisallowedSpecialToken is the sentinel DisallowedSpecialTokenFoundError wraps.
	ErrDisallowedSpecialToken = errors.New("tiktoken: disallowed special token found in text")
	// ErrInvalidAllowedSpecialArgument is returned when allowedSpecial or
	// disallowedSpecial is neither a SpecialTokenSet nor SpecialTokenSetAll.
	ErrInvalidAllowedSpecialArgument = errors.New("tiktoken: invalid allowed/disallowed special argument")
)

// DisallowedSpecialTokenFoundError is returned by Encode when text contains
// a special-token literal that the caller's policy disallows. The call
// fails outright rather than returning partial output.
type DisallowedSpecialTokenFoundError struct {
	Literal string
}

func (e *DisallowedSpecialTokenFoundError) Error() string {
	return fmt.Sprintf("tiktoken: disallowed special token %q found in text", e.Literal)
}

func (e *DisallowedSpecialTokenFoundError) Unwrap() error { return ErrDisallowedSpecialToken }
