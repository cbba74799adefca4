package flagsource

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTTL             = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

var (
	shared   = gocache.New(DefaultTTL, DefaultCleanupInterval)
	anonKeys atomic.Uint64
)

type cached struct {
	p   Provider
	key string
	ttl time.Duration
	mu  sync.Mutex
}

// Cached wraps p so its flags are computed once per ttl. Providers that
// implement Keyed share entries process-wide: two cached probes of the same
// launcher run it once. A non-positive ttl means DefaultTTL. Errors are not
// cached.
func Cached(p Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := ""
	if k, ok := p.(Keyed); ok {
		key = k.Key()
	}
	if key == "" {
		key = "anon:" + strconv.FormatUint(anonKeys.Add(1), 10)
	}
	return &cached{p: p, key: key, ttl: ttl}
}

func (c *cached) Key() string { return c.key }

func (c *cached) Flags(ctx context.Context) ([]string, error) {
	if flags, ok := c.lookup(); ok {
		return flags, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if flags, ok := c.lookup(); ok {
		return flags, nil
	}
	flags, err := c.p.Flags(ctx)
	if err != nil {
		return nil, err
	}
	shared.Set(c.key, append([]string(nil), flags...), c.ttl)
	return flags, nil
}

func (c *cached) lookup() ([]string, bool) {
	v, found := shared.Get(c.key)
	if !found {
		return nil, false
	}
	flags, ok := v.([]string)
	if !ok {
		return nil, false
	}
	return append([]string(nil), flags...), true
}

// Invalidate drops every cached flag list.
func Invalidate() { shared.Flush() }

// invalidateSource drops every cached entry built from the provider keyed by
// source, whether cached directly or as part of a Merge.
func invalidateSource(source string) {
	for key := range shared.Items() {
		if dependsOn(key, source) {
			shared.Delete(key)
		}
	}
}

// dependsOn reports whether key is source or a merge key listing it.
func dependsOn(key, source string) bool {
	for i := 0; ; {
		j := strings.Index(key[i:], source)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(source)
		before := start == 0 || key[start-1] == '[' || key[start-1] == ';'
		after := end == len(key) || key[end] == ']' || key[end] == ';'
		if before && after {
			return true
		}
		i = start + 1
	}
}
