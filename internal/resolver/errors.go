package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedReference means a reference matches none of the reference grammars.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrUnresolvedSymbol means an owner or member is missing from a table the goal requires.
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
)

// Hops name the table lookup that failed.
const (
	HopParse         = "parse"
	HopPrimaryOwner  = "primary owner"
	HopPrimaryMember = "primary member"
)

// LookupError describes a failed lookup.
type LookupError struct {
	Kind      Kind
	Reference string
	Hop       string
	Symbol    string
	Err       error
}

func (e *LookupError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s lookup %q: %v", e.Kind, e.Reference, e.Err)
	}
	return fmt.Sprintf("%s lookup %q: %v: %s %q not found", e.Kind, e.Reference, e.Err, e.Hop, e.Symbol)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func malformed(kind Kind, ref string) error {
	return &LookupError{Kind: kind, Reference: ref, Hop: HopParse, Err: ErrMalformedReference}
}

func unresolved(kind Kind, ref, hop, symbol string) error {
	return &LookupError{Kind: kind, Reference: ref, Hop: hop, Symbol: symbol, Err: ErrUnresolvedSymbol}
}
