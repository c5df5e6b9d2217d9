package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"marketplace-feed/dao"
	"marketplace-feed/model"
	"marketplace-feed/pkg/oracle"
	"marketplace-feed/pkg/ranking"
	"marketplace-feed/pkg/search"
)

// DefaultQuery is sent to the oracle when neither search text nor stored
// preferences say what the shopper wants.
const DefaultQuery = "no preference, return everything"

type FeedUsecase struct {
	items  ItemStore
	prefs  PreferenceStore
	ranker Ranker
}

func NewFeedUsecase(items ItemStore, prefs PreferenceStore, ranker Ranker) *FeedUsecase {
	return &FeedUsecase{items: items, prefs: prefs, ranker: ranker}
}

// Feed retrieves the candidates for req and orders them by the oracle's
// suggestion. Oracle trouble of any kind degrades to retrieval order; only
// bad input and store failures are returned as errors.
func (u *FeedUsecase) Feed(ctx context.Context, req model.FeedRequest) ([]model.Item, error) {
	pool, err := u.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return pool, nil
	}

	candidates := rankable(pool)
	if len(candidates) == 0 {
		return pool, nil
	}

	query := resolveQuery(ctx, u.querySources(req)...)
	raw, err := u.ranker.Rank(ctx, query, candidates)
	if err != nil {
		log.Warn().Err(err).Str("stage", "rank").Str("user_id", req.RequestingUserID).Msg("oracle unavailable, keeping retrieval order")
		return ranking.Reconcile(ranking.Unranked, pool), nil
	}
	return ranking.Reconcile(ranking.ParseSuggestion(raw), pool), nil
}

// retrieve runs the structured filter against the store and then the text
// match. Blank search text matches everything.
func (u *FeedUsecase) retrieve(ctx context.Context, req model.FeedRequest) ([]model.Item, error) {
	if req.Window.Limit < 0 || req.Window.Offset < 0 {
		return nil, fmt.Errorf("%w: negative window", ErrInvalidRequest)
	}
	items, err := u.items.FindByFilter(ctx, req.Filter, req.Window)
	if err != nil {
		if errors.Is(err, dao.ErrUnsupportedFilter) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, fmt.Errorf("%w: retrieve items: %v", ErrStore, err)
	}
	return search.Filter(items, search.Tokenize(req.SearchText)), nil
}

// rankable lists the candidates the oracle is shown. Sold items stay in the
// pool but are not sent.
func rankable(pool []model.Item) []oracle.Candidate {
	out := make([]oracle.Candidate, 0, len(pool))
	for _, it := range pool {
		if it.Status == model.StatusSold {
			continue
		}
		out = append(out, oracle.Candidate{ID: it.ID, Summary: it.Summary})
	}
	return out
}

// querySource yields one candidate for the effective query, "" if it has none.
type querySource func(ctx context.Context) string

func (u *FeedUsecase) querySources(req model.FeedRequest) []querySource {
	return []querySource{
		func(context.Context) string { return strings.TrimSpace(req.SearchText) },
		func(ctx context.Context) string { return u.storedPreferences(ctx, req.RequestingUserID) },
		func(context.Context) string { return DefaultQuery },
	}
}

// resolveQuery returns the first non-empty answer. Later sources are not
// consulted once one answers.
func resolveQuery(ctx context.Context, sources ...querySource) string {
	for _, src := range sources {
		if q := src(ctx); q != "" {
			return q
		}
	}
	return ""
}

func (u *FeedUsecase) storedPreferences(ctx context.Context, userID string) string {
	if userID == "" || u.prefs == nil {
		return ""
	}
	prefs, err := u.prefs.GetPreferences(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("stage", "rank").Str("user_id", userID).Msg("could not read preferences")
		return ""
	}
	return strings.TrimSpace(prefs)
}
