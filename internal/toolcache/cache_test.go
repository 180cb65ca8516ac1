package toolcache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	c := New(zerolog.Nop())
	clock := time.Now()
	c.now = func() time.Time { return clock }
	return c, &clock
}

func countingRemote(calls *atomic.Int32, result string) RemoteFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(result), nil
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32
		args := map[string]any{"query": "foo"}

		first, err := c.Do(ctx, "search", args, countingRemote(&calls, `{"n":1}`))
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		second, err := c.Do(ctx, "search", args, countingRemote(&calls, `{"n":2}`))
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("remote invoked %d times, want 1", calls.Load())
		}
		if string(first) != string(second) {
			t.Errorf("second call returned %s, want cached %s", second, first)
		}
	})

	t.Run("different arguments miss independently", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "search", map[string]any{"query": "a"}, countingRemote(&calls, `1`))
		c.Do(ctx, "search", map[string]any{"query": "b"}, countingRemote(&calls, `2`))
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times, want 2", calls.Load())
		}
	})

	t.Run("concurrent identical calls invoke remote once", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32
		remote := func(ctx context.Context) (json.RawMessage, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return json.RawMessage(`{"shared":true}`), nil
		}

		args := map[string]any{"path": "notes/a.md"}
		results := make([]json.RawMessage, 2)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := c.Do(ctx, "backlinks", args, remote)
				if err != nil {
					t.Errorf("Do() error = %v", err)
				}
				results[i] = data
			}()
		}
		wg.Wait()

		if calls.Load() != 1 {
			t.Errorf("remote invoked %d times, want 1", calls.Load())
		}
		if string(results[0]) != string(results[1]) {
			t.Errorf("coalesced callers disagree: %s vs %s", results[0], results[1])
		}
	})

	t.Run("bypass tool always invokes remote", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32
		args := map[string]any{"path": "notes/a.md"}

		c.Do(ctx, "reindex", args, countingRemote(&calls, `{}`))
		c.Do(ctx, "reindex", args, countingRemote(&calls, `{}`))
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times, want 2", calls.Load())
		}
		if c.Size() != 0 {
			t.Errorf("bypass call stored %d entries, want 0", c.Size())
		}
	})

	t.Run("unknown tool defaults to bypass", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "brand_new_tool", nil, countingRemote(&calls, `{}`))
		c.Do(ctx, "brand_new_tool", nil, countingRemote(&calls, `{}`))
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times, want 2", calls.Load())
		}
	})

	t.Run("session entry survives any clock advance", func(t *testing.T) {
		c, clock := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "capabilities", nil, countingRemote(&calls, `{"v":1}`))
		*clock = clock.Add(1000 * time.Hour)
		data, err := c.Do(ctx, "capabilities", nil, countingRemote(&calls, `{"v":2}`))
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("remote invoked %d times, want 1", calls.Load())
		}
		if string(data) != `{"v":1}` {
			t.Errorf("Do() = %s, want original cached value", data)
		}
	})

	t.Run("short entry expires after its TTL", func(t *testing.T) {
		c, clock := newTestCache(t)
		var calls atomic.Int32
		args := map[string]any{"query": "x"}

		c.Do(ctx, "search", args, countingRemote(&calls, `1`))
		*clock = clock.Add(ShortTTL - time.Second)
		c.Do(ctx, "search", args, countingRemote(&calls, `2`))
		if calls.Load() != 1 {
			t.Errorf("remote invoked %d times before TTL, want 1", calls.Load())
		}

		*clock = clock.Add(2 * time.Second)
		c.Do(ctx, "search", args, countingRemote(&calls, `3`))
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times after TTL, want 2", calls.Load())
		}
	})

	t.Run("medium entry outlives the short TTL", func(t *testing.T) {
		c, clock := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "health", nil, countingRemote(&calls, `{"ok":true}`))
		*clock = clock.Add(MediumTTL - time.Second)
		c.Do(ctx, "health", nil, countingRemote(&calls, `{"ok":true}`))
		if calls.Load() != 1 {
			t.Errorf("remote invoked %d times before TTL, want 1", calls.Load())
		}

		*clock = clock.Add(2 * time.Second)
		c.Do(ctx, "health", nil, countingRemote(&calls, `{"ok":true}`))
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times after TTL, want 2", calls.Load())
		}
	})

	t.Run("failed call is not cached and is retryable", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32
		boom := errors.New("index unavailable")
		failing := func(ctx context.Context) (json.RawMessage, error) {
			calls.Add(1)
			return nil, boom
		}
		args := map[string]any{"query": "x"}

		if _, err := c.Do(ctx, "search", args, failing); !errors.Is(err, boom) {
			t.Errorf("Do() error = %v, want %v", err, boom)
		}
		if c.Size() != 0 {
			t.Errorf("failed call stored %d entries, want 0", c.Size())
		}
		if _, err := c.Do(ctx, "search", args, failing); !errors.Is(err, boom) {
			t.Errorf("retry error = %v, want %v", err, boom)
		}
		if calls.Load() != 2 {
			t.Errorf("remote invoked %d times, want 2", calls.Load())
		}
	})
}

func TestInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidate tool leaves other tools intact", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "search", map[string]any{"query": "x"}, countingRemote(&calls, `1`))
		c.Do(ctx, "tags", nil, countingRemote(&calls, `2`))
		c.InvalidateTool("search")

		c.Do(ctx, "search", map[string]any{"query": "x"}, countingRemote(&calls, `1`))
		c.Do(ctx, "tags", nil, countingRemote(&calls, `2`))
		if calls.Load() != 3 {
			t.Errorf("remote invoked %d times, want 3 (search refetched, tags cached)", calls.Load())
		}
	})

	t.Run("invalidate path removes matching entries only", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "backlinks", map[string]any{"path": "notes/a.md"}, countingRemote(&calls, `1`))
		c.Do(ctx, "backlinks", map[string]any{"path": "notes/b.md"}, countingRemote(&calls, `2`))
		c.InvalidatePath("notes/a.md")

		c.Do(ctx, "backlinks", map[string]any{"path": "notes/a.md"}, countingRemote(&calls, `1`))
		c.Do(ctx, "backlinks", map[string]any{"path": "notes/b.md"}, countingRemote(&calls, `2`))
		if calls.Load() != 3 {
			t.Errorf("remote invoked %d times, want 3", calls.Load())
		}
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		c, _ := newTestCache(t)
		var calls atomic.Int32

		c.Do(ctx, "search", map[string]any{"query": "x"}, countingRemote(&calls, `1`))
		c.Do(ctx, "tags", nil, countingRemote(&calls, `2`))
		c.Clear()
		if c.Size() != 0 {
			t.Errorf("Size() = %d after Clear, want 0", c.Size())
		}
	})

	t.Run("call in flight during clear is not stored", func(t *testing.T) {
		c, _ := newTestCache(t)
		started := make(chan struct{})
		release := make(chan struct{})
		remote := func(ctx context.Context) (json.RawMessage, error) {
			close(started)
			<-release
			return json.RawMessage(`{"stale":true}`), nil
		}

		done := make(chan json.RawMessage, 1)
		go func() {
			data, err := c.Do(context.Background(), "search", map[string]any{"query": "x"}, remote)
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
			done <- data
		}()

		<-started
		c.Clear()
		close(release)

		if data := <-done; string(data) != `{"stale":true}` {
			t.Errorf("in-flight caller got %s, want its own result", data)
		}
		if c.Size() != 0 {
			t.Errorf("Size() = %d, want 0 (result from before Clear must not be stored)", c.Size())
		}
	})
}
