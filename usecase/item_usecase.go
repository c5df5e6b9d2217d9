package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"marketplace-feed/dao"
	"marketplace-feed/model"
)

type ItemUsecase struct {
	itemRepo ItemStore
}

func NewItemUsecase(itemRepo ItemStore) *ItemUsecase {
	return &ItemUsecase{itemRepo: itemRepo}
}

func (u *ItemUsecase) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	return loadItem(ctx, u.itemRepo, id)
}

// loadItem reads one item. Rows too malformed to serve are reported as not
// found, the same way retrieval leaves them out of the feed.
func loadItem(ctx context.Context, items ItemStore, id string) (*model.Item, error) {
	item, err := items.GetByID(ctx, id)
	if errors.Is(err, dao.ErrMalformedItem) {
		log.Warn().Err(err).Str("item_id", id).Msg("malformed item treated as missing")
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load item: %v", ErrStore, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}
