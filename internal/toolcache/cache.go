package toolcache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RemoteFunc performs the underlying tool invocation. The cache imposes no
// timeout of its own; per-call deadlines belong to the invoker.
type RemoteFunc func(ctx context.Context) (json.RawMessage, error)

// Cache is a tiered memoization layer in front of a tool invoker.
//
// The check-cache / check-in-flight / register sequence is guarded by a
// mutex plus a singleflight group, which preserves the at-most-one
// outstanding call per key guarantee under real parallelism. Failed calls
// are never stored: the error propagates identically to every coalesced
// waiter and the key is immediately retryable.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   *singleflight.Group
	gen     uint64

	now func() time.Time
	log zerolog.Logger
}

// entry lives until its deadline passes or it is invalidated. A zero
// expiresAt means the entry lasts for the whole session.
type entry struct {
	data      json.RawMessage
	expiresAt time.Time
}

// New creates an empty cache.
func New(logger zerolog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		group:   new(singleflight.Group),
		now:     time.Now,
		log:     logger,
	}
}

// Do executes a tool call through the cache.
//
// Bypass-tier tools (mutations and unknown names) invoke call directly
// with no cache interaction. Otherwise a live entry is returned as-is,
// a concurrent identical call is joined rather than duplicated, and a
// genuine miss invokes call and stores the result with the tier's TTL.
//
// Coalesced callers share the context of whichever call reached the
// invoker first; cancelling it fails every waiter.
func (c *Cache) Do(ctx context.Context, tool string, args map[string]any, call RemoteFunc) (json.RawMessage, error) {
	tier := Classify(tool)
	if tier == TierBypass {
		return call(ctx)
	}

	key := Key(tool, args)
	if data, ok := c.lookup(key); ok {
		c.log.Debug().Str("tool", tool).Msg("cache hit")
		return data, nil
	}

	c.mu.Lock()
	gen := c.gen
	group := c.group
	c.mu.Unlock()

	v, err, shared := group.Do(key, func() (any, error) {
		// A coalesced waiter may arrive after the winner already
		// populated the entry.
		if data, ok := c.lookup(key); ok {
			return data, nil
		}
		data, err := call(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, tier, data, gen)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug().Str("tool", tool).Msg("coalesced onto in-flight call")
	}
	return v.(json.RawMessage), nil
}

func (c *Cache) lookup(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		// Lazy eviction: expired entries die on their next lookup.
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

func (c *Cache) store(key string, tier Tier, data json.RawMessage, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Clear ran while this call was in flight; its result must not
		// repopulate the cache.
		return
	}
	e := entry{data: data}
	if ttl := tier.TTL(); ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
}

// InvalidateTool removes every entry for the named tool. In-flight calls
// are untouched; they complete and populate as normal.
func (c *Cache) InvalidateTool(tool string) {
	prefix := tool + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.log.Debug().Str("tool", tool).Msg("invalidated tool entries")
}

// InvalidatePath removes every entry whose serialized arguments mention
// the given note path. Coarse, but a mutation to one note can only affect
// results that named it.
func (c *Cache) InvalidatePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.Contains(argsOf(key), path) {
			delete(c.entries, key)
		}
	}
	c.log.Debug().Str("path", path).Msg("invalidated path entries")
}

// Clear drops all entries and in-flight trackers. Calls still running keep
// their waiters but their results are discarded rather than stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.group = new(singleflight.Group)
	c.gen++
}

// Size reports the number of stored entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
