package assumption

import "sync"

// Context owns the live assumption set. Calculations hold the *Context and
// read the current Config through it; anything that memoizes results by
// listing registers an invalidation hook, which fires atomically under the
// context lock whenever the set is replaced.
type Context struct {
	mu    sync.RWMutex
	cfg   *Config
	hooks []func()
}

// NewContext wraps an initial config. A nil config gets the defaults.
func NewContext(cfg *Config) *Context {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Context{cfg: cfg}
}

// Config returns the current assumption set. Callers treat it as read-only;
// changes go through Replace so caches are cleared.
func (ctx *Context) Config() *Config {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.cfg
}

// Replace swaps in a new assumption set and fires every registered
// invalidation hook before any caller can observe the new config alongside
// stale cached results.
func (ctx *Context) Replace(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.cfg = cfg
	for _, hook := range ctx.hooks {
		hook()
	}
}

// OnReplace registers an invalidation hook. Hooks run synchronously inside
// Replace, in registration order.
func (ctx *Context) OnReplace(hook func()) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.hooks = append(ctx.hooks, hook)
}
