package search

import (
	"strings"

	"marketplace-feed/model"
)

// Matches reports whether item mentions any token in q. Name, categories and
// details are checked in that order and the first hit wins. q must not be
// empty; callers treat an empty set as "match everything" and skip matching.
func Matches(item model.Item, q Tokens) bool {
	if Tokenize(item.Name).Intersects(q) {
		return true
	}
	if Tokenize(strings.Join(item.Categories, " ")).Intersects(q) {
		return true
	}
	return Tokenize(item.Details).Intersects(q)
}

// Filter keeps the items of pool that match q, preserving order.
func Filter(pool []model.Item, q Tokens) []model.Item {
	if q.Empty() {
		return pool
	}
	out := make([]model.Item, 0, len(pool))
	for _, it := range pool {
		if Matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}
