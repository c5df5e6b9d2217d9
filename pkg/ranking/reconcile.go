// Package ranking merges the ranking oracle's suggested order with the
// authoritative candidate pool.
package ranking

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"marketplace-feed/model"
)

// Suggestion is the parsed oracle answer. When Ranked is false the oracle
// gave nothing usable and the pool keeps its retrieval order.
type Suggestion struct {
	IDs    []string
	Ranked bool
}

// Unranked is the marker for an oracle answer that could not be used.
var Unranked = Suggestion{}

// ParseSuggestion reads raw as a JSON array of ids. Invalid JSON or a
// non-array value yields Unranked; elements that are not strings are skipped.
// Markdown code fences around the array are tolerated since chat models add
// them even when told not to.
func ParseSuggestion(raw string) Suggestion {
	body := stripFence(strings.TrimSpace(raw))
	var elems []any
	if err := json.Unmarshal([]byte(body), &elems); err != nil {
		log.Warn().Err(err).Str("stage", "reconcile").Int("raw_len", len(raw)).Msg("oracle response is not an id array, keeping retrieval order")
		return Unranked
	}
	if elems == nil {
		// literal null
		log.Warn().Str("stage", "reconcile").Msg("oracle response is null, keeping retrieval order")
		return Unranked
	}
	ids := make([]string, 0, len(elems))
	for _, e := range elems {
		if id, ok := e.(string); ok {
			ids = append(ids, id)
		}
	}
	if skipped := len(elems) - len(ids); skipped > 0 {
		log.Debug().Str("stage", "reconcile").Int("skipped", skipped).Msg("ignoring non-string ids")
	}
	return Suggestion{IDs: ids, Ranked: true}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// Reconcile orders pool by the suggestion. Suggested ids are taken first in
// the order given; each one claims the first remaining item with an equal id,
// and ids with no remaining match (unknown, stale, repeated) are skipped.
// Whatever is left follows in its original order. The result is always a
// permutation of pool.
func Reconcile(s Suggestion, pool []model.Item) []model.Item {
	out := make([]model.Item, 0, len(pool))
	remaining := make([]model.Item, len(pool))
	copy(remaining, pool)

	if s.Ranked {
		for _, id := range s.IDs {
			for i := range remaining {
				if remaining[i].ID != id {
					continue
				}
				out = append(out, remaining[i])
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return append(out, remaining...)
}
