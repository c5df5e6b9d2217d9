package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Candidate is what the oracle sees of an item.
type Candidate struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

const rankSystem = "You rank marketplace listings for a shopper. " +
	"You receive a shopper query and a JSON array of listings, each with an id and a summary. " +
	"Reply with a JSON array of the listing ids ordered from most to least relevant to the query, and nothing else. " +
	"Use only ids from the input. No prose, no code fences."

// Ranker asks the oracle to order candidates for a query.
type Ranker struct {
	Completer Completer
	Timeout   time.Duration
}

func NewRanker(c Completer, timeout time.Duration) *Ranker {
	return &Ranker{Completer: c, Timeout: timeout}
}

// Rank returns the oracle's raw answer. It does not parse it. With no
// candidates the oracle is not called and Rank returns "" and a nil error.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}
	user := fmt.Sprintf("Query: %q\nListings: %s", query, payload)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := r.Completer.Complete(ctx, Prompt{System: rankSystem, User: user, JSON: true})
	if err != nil {
		return "", fmt.Errorf("rank: %w", err)
	}
	log.Debug().Str("stage", "rank").Int("candidates", len(candidates)).Dur("took", time.Since(start)).Msg("oracle ranked candidates")
	return raw, nil
}
