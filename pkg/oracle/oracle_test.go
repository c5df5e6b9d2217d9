package oracle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-feed/pkg/cache"
	"marketplace-feed/pkg/ranking"
)

type fakeCompleter struct {
	calls  atomic.Int32
	answer string
	err    error
	wait   chan struct{}
	last   Prompt
	mu     sync.Mutex
}

func (f *fakeCompleter) Model() string { return "fake-model" }

func (f *fakeCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = p
	f.mu.Unlock()
	if f.wait != nil {
		select {
		case <-f.wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

type fakeChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestOpenAIComplete(t *testing.T) {
	t.Run("returns first choice", func(t *testing.T) {
		chat := &fakeChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: `["a"]`}},
		}}}
		o := &OpenAI{Client: chat, ModelName: "gpt-test"}

		out, err := o.Complete(context.Background(), Prompt{System: "sys", User: "usr"})
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, out)
		assert.Equal(t, "gpt-test", chat.req.Model)
		require.Len(t, chat.req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, chat.req.Messages[0].Role)
		assert.Equal(t, "usr", chat.req.Messages[1].Content)
	})

	t.Run("no choices", func(t *testing.T) {
		o := &OpenAI{Client: &fakeChat{}, ModelName: "m"}
		_, err := o.Complete(context.Background(), Prompt{User: "x"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("transport error wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		o := &OpenAI{Client: &fakeChat{err: boom}, ModelName: "m"}
		_, err := o.Complete(context.Background(), Prompt{User: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestRanker(t *testing.T) {
	ctx := context.Background()

	t.Run("skips oracle without candidates", func(t *testing.T) {
		f := &fakeCompleter{answer: `["x"]`}
		raw, err := NewRanker(f, time.Second).Rank(ctx, "bikes", nil)
		require.NoError(t, err)
		assert.Empty(t, raw)
		assert.Zero(t, f.calls.Load())
	})

	t.Run("sends query and candidates", func(t *testing.T) {
		f := &fakeCompleter{answer: `["b","a"]`}
		raw, err := NewRanker(f, time.Second).Rank(ctx, "bikes", []Candidate{{ID: "a", Summary: "lamp"}, {ID: "b", Summary: "bike"}})
		require.NoError(t, err)
		assert.Equal(t, `["b","a"]`, raw)
		assert.True(t, f.last.JSON)
		assert.Contains(t, f.last.User, `"bikes"`)
		assert.Contains(t, f.last.User, `{"id":"b","summary":"bike"}`)
	})

	t.Run("times out", func(t *testing.T) {
		f := &fakeCompleter{wait: make(chan struct{})}
		_, err := NewRanker(f, 20*time.Millisecond).Rank(ctx, "q", []Candidate{{ID: "a"}})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestPreferenceMerger(t *testing.T) {
	f := &fakeCompleter{answer: "  \"bikes, lamps\"\n"}
	out, err := NewPreferenceMerger(f, time.Second).Merge(context.Background(), "bikes", "Vintage lamp")
	require.NoError(t, err)
	assert.Equal(t, "bikes, lamps", out)
	assert.Contains(t, f.last.User, `"bikes"`)
	assert.Contains(t, f.last.User, `"Vintage lamp"`)
	assert.False(t, f.last.JSON)

	f.err = errors.New("down")
	_, err = NewPreferenceMerger(f, time.Second).Merge(context.Background(), "", "x")
	assert.Error(t, err)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := cache.NewRedisClient(ctx, cache.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	f := &fakeCompleter{answer: `["a"]`}
	c := &Cached{Next: f, Store: store, TTL: time.Minute}
	p := Prompt{System: "s", User: "u"}

	for i := 0; i < 3; i++ {
		out, err := c.Complete(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, out)
	}
	assert.EqualValues(t, 1, f.calls.Load())
	assert.Equal(t, "fake-model", c.Model())

	t.Run("errors are not cached", func(t *testing.T) {
		bad := &fakeCompleter{err: errors.New("down")}
		c := &Cached{Next: bad, Store: store, TTL: time.Minute}
		_, err := c.Complete(ctx, Prompt{User: "other"})
		assert.Error(t, err)
		_, err = c.Complete(ctx, Prompt{User: "other"})
		assert.Error(t, err)
		assert.EqualValues(t, 2, bad.calls.Load())
	})

	t.Run("rejected answers are not cached", func(t *testing.T) {
		prose := &fakeCompleter{answer: "sorry, I cannot help"}
		c := &Cached{
			Next:   prose,
			Store:  store,
			TTL:    time.Minute,
			Accept: func(s string) bool { return ranking.ParseSuggestion(s).Ranked },
		}
		for i := 0; i < 2; i++ {
			out, err := c.Complete(ctx, Prompt{User: "prose"})
			require.NoError(t, err)
			assert.Equal(t, "sorry, I cannot help", out)
		}
		assert.EqualValues(t, 2, prose.calls.Load())

		prose.answer = `["a"]`
		_, err := c.Complete(ctx, Prompt{User: "prose"})
		require.NoError(t, err)
		_, err = c.Complete(ctx, Prompt{User: "prose"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, prose.calls.Load())
	})

	t.Run("broken cache falls through", func(t *testing.T) {
		f := &fakeCompleter{answer: "ok"}
		mr.SetError("READONLY")
		defer mr.SetError("")
		out, err := (&Cached{Next: f, Store: store, TTL: time.Minute}).Complete(ctx, Prompt{User: "third"})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	})
}

func TestCoalescing(t *testing.T) {
	f := &fakeCompleter{answer: `["a"]`, wait: make(chan struct{})}
	c := NewCoalescing(f)

	const n = 5
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := c.Complete(context.Background(), Prompt{User: "same"})
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.wait)
	wg.Wait()

	assert.LessOrEqual(t, f.calls.Load(), int32(n))
	for _, r := range results {
		assert.Equal(t, `["a"]`, r)
	}
}

func TestCoalescingCallerCancel(t *testing.T) {
	f := &fakeCompleter{answer: `["a"]`, wait: make(chan struct{})}
	c := NewCoalescing(f)
	p := Prompt{User: "same"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Complete(firstCtx, p)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	second := make(chan string, 1)
	go func() {
		out, err := c.Complete(context.Background(), p)
		assert.NoError(t, err)
		second <- out
	}()
	time.Sleep(20 * time.Millisecond)
	close(f.wait)

	select {
	case out := <-second:
		assert.Equal(t, `["a"]`, out)
	case <-time.After(time.Second):
		t.Fatal("live caller got no answer")
	}
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestCoalescingKeepsDeadline(t *testing.T) {
	f := &fakeCompleter{wait: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewCoalescing(f).Complete(ctx, Prompt{User: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyFrom(t *testing.T) {
	a := KeyFrom("m", Prompt{System: "s", User: "u"})
	assert.Equal(t, a, KeyFrom("m", Prompt{System: "s", User: "u"}))
	assert.NotEqual(t, a, KeyFrom("m2", Prompt{System: "s", User: "u"}))
	assert.NotEqual(t, a, KeyFrom("m", Prompt{System: "s", User: "u2"}))
	assert.Len(t, a, 64)
	assert.False(t, strings.ContainsAny(a, "ABCDEF"))
}
