// Package search implements the plain-text side of the feed: tokenizing free
// text and deciding whether an item mentions any of the tokens.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokens is a deduplicated token set.
type Tokens map[string]struct{}

// Tokenize trims and lowercases s and splits it on single spaces. Empty
// fragments are dropped, so blank input yields an empty set. There is no
// stemming and no punctuation stripping.
func Tokenize(s string) Tokens {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tokens{}
	}
	// Casers keep state, so one per call.
	s = cases.Lower(language.Und).String(s)

	out := make(Tokens)
	for _, tok := range strings.Split(s, " ") {
		if tok == "" {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func (t Tokens) Empty() bool { return len(t) == 0 }

// Intersects reports whether t and other share a token.
func (t Tokens) Intersects(other Tokens) bool {
	small, large := t, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for tok := range small {
		if _, ok := large[tok]; ok {
			return true
		}
	}
	return false
}
