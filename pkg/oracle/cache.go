package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"marketplace-feed/pkg/cache"
)

// KeyFrom builds a cache key from the model name and prompt.
func KeyFrom(model string, p Prompt) string {
	h := sha256.Sum256([]byte(model + "\n\n" + p.System + "\n\n" + p.User))
	return hex.EncodeToString(h[:])
}

// Cached serves repeated prompts from a cache. Cache failures are logged and
// fall through to the wrapped Completer.
type Cached struct {
	Next  Completer
	Store cache.Client
	TTL   time.Duration
	// Accept reports whether an answer may be stored. Rejected answers are
	// still returned. Nil accepts everything.
	Accept func(string) bool
}

func (c *Cached) Model() string { return modelOf(c.Next) }

func (c *Cached) Complete(ctx context.Context, p Prompt) (string, error) {
	key := KeyFrom(modelOf(c.Next), p)

	b, err := c.Store.Get(ctx, key)
	switch {
	case err == nil:
		return string(b), nil
	case !errors.Is(err, cache.ErrCacheMiss):
		log.Warn().Err(err).Str("stage", "oracle_cache").Msg("cache read failed")
	}

	out, err := c.Next.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if c.Accept != nil && !c.Accept(out) {
		log.Debug().Str("stage", "oracle_cache").Msg("answer not cacheable")
		return out, nil
	}
	if err := c.Store.Set(ctx, key, []byte(out), c.TTL); err != nil {
		log.Warn().Err(err).Str("stage", "oracle_cache").Msg("cache write failed")
	}
	return out, nil
}

// Coalescing shares one in-flight oracle call among identical prompts. The
// shared call is detached from any single caller's cancellation but keeps the
// first caller's deadline; each caller still stops waiting when its own
// context ends.
type Coalescing struct {
	Next  Completer
	group singleflight.Group
}

func NewCoalescing(next Completer) *Coalescing {
	return &Coalescing{Next: next}
}

func (c *Coalescing) Model() string { return modelOf(c.Next) }

func (c *Coalescing) Complete(ctx context.Context, p Prompt) (string, error) {
	ch := c.group.DoChan(KeyFrom(modelOf(c.Next), p), func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithDeadline(callCtx, deadline)
			defer cancel()
		}
		return c.Next.Complete(callCtx, p)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Debug().Str("stage", "oracle_coalesce").Msg("shared in-flight oracle call")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
