package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"marketplace-feed/model"
)

// PreferenceAdapter folds the summary of an item a buyer asks about into the
// buyer's stored preference string. Adaptation is advisory: it runs on a
// worker pool after the chat message is stored and its failures are logged,
// never returned to the sender.
type PreferenceAdapter struct {
	items       ItemStore
	prefs       PreferenceStore
	merger      PreferenceMerger
	pool        *ants.Pool
	taskTimeout time.Duration
	wg          sync.WaitGroup
}

type AdapterOption func(*PreferenceAdapter)

// WithTaskTimeout bounds one adaptation end to end. Default 30s.
func WithTaskTimeout(d time.Duration) AdapterOption {
	return func(a *PreferenceAdapter) {
		if d > 0 {
			a.taskTimeout = d
		}
	}
}

func NewPreferenceAdapter(items ItemStore, prefs PreferenceStore, merger PreferenceMerger, poolSize int, opts ...AdapterOption) (*PreferenceAdapter, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	// Non-blocking: a saturated pool drops work instead of stalling senders.
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	a := &PreferenceAdapter{
		items:       items,
		prefs:       prefs,
		merger:      merger,
		pool:        pool,
		taskTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Dispatch schedules Adapt in the background. It never blocks on the oracle.
func (a *PreferenceAdapter) Dispatch(buyerID, itemID string) {
	a.wg.Add(1)
	err := a.pool.Submit(func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.taskTimeout)
		defer cancel()
		if err := a.Adapt(ctx, buyerID, itemID); err != nil {
			log.Warn().Err(err).Str("stage", "adapt").Str("user_id", buyerID).Str("item_id", itemID).Msg("preference adaptation failed")
		}
	})
	if err != nil {
		a.wg.Done()
		log.Warn().Err(err).Str("stage", "adapt").Str("user_id", buyerID).Str("item_id", itemID).Msg("preference adaptation dropped")
	}
}

// Adapt merges the item's summary into buyerID's preferences and stores the
// result, replacing the old value. Owners asking about their own items are
// left alone.
func (a *PreferenceAdapter) Adapt(ctx context.Context, buyerID, itemID string) error {
	item, err := loadItem(ctx, a.items, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID == buyerID {
		return nil
	}

	current, err := a.prefs.GetPreferences(ctx, buyerID)
	if err != nil {
		return fmt.Errorf("%w: load preferences: %v", ErrStore, err)
	}

	merged, err := a.merger.Merge(ctx, current, item.Summary)
	if err != nil {
		return err
	}
	merged = model.Truncate(merged, model.SummaryMaxLen)
	if merged == "" {
		return errors.New("oracle returned an empty preference")
	}

	if err := a.prefs.UpdatePreferences(ctx, buyerID, merged); err != nil {
		return fmt.Errorf("%w: save preferences: %v", ErrStore, err)
	}
	log.Debug().Str("stage", "adapt").Str("user_id", buyerID).Str("item_id", itemID).Str("preferences", merged).Msg("preferences adapted")
	return nil
}

// Wait blocks until dispatched adaptations finish.
func (a *PreferenceAdapter) Wait() {
	a.wg.Wait()
}

// Release waits up to timeout for pending adaptations and frees the pool.
func (a *PreferenceAdapter) Release(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn().Str("stage", "adapt").Msg("pending adaptations abandoned at shutdown")
	}
	a.pool.Release()
}
