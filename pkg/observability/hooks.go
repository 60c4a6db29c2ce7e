// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through global hooks that default to no-ops, so the
// packing core carries no dependency on a metrics backend. The CLI registers
// its own hooks at start-up; tests register recorders.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetStateHooks(&myStateHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnPackStart(ctx, len(blocks))
//	// ... pack ...
//	observability.Pipeline().OnPackComplete(ctx, placed, dropped, created, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the packing pipeline.
type PipelineHooks interface {
	// Ingest events
	OnIngestStart(ctx context.Context, input string)
	OnIngestComplete(ctx context.Context, input string, blocks, rejected int, duration time.Duration, err error)

	// Pack events
	OnPackStart(ctx context.Context, blocks int)
	OnPackComplete(ctx context.Context, placed, dropped, created int, duration time.Duration)

	// Output events
	OnOutputStart(ctx context.Context, dir string)
	OnOutputComplete(ctx context.Context, dir string, pages int, duration time.Duration, err error)
}

// =============================================================================
// State Hooks
// =============================================================================

// StateHooks receives events from state persistence.
type StateHooks interface {
	// OnStateLoad records a load; found is false when no state existed.
	OnStateLoad(ctx context.Context, location string, found bool, duration time.Duration, err error)

	// OnStateSave records a save of size encoded bytes.
	OnStateSave(ctx context.Context, location string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from artifact cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnIngestStart(context.Context, string) {}
func (NoopPipelineHooks) OnIngestComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnPackStart(context.Context, int)                                    {}
func (NoopPipelineHooks) OnPackComplete(context.Context, int, int, int, time.Duration)        {}
func (NoopPipelineHooks) OnOutputStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnOutputComplete(context.Context, string, int, time.Duration, error) {}

// NoopStateHooks is a no-op implementation of StateHooks.
type NoopStateHooks struct{}

func (NoopStateHooks) OnStateLoad(context.Context, string, bool, time.Duration, error) {}
func (NoopStateHooks) OnStateSave(context.Context, string, int, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	stateHooks    StateHooks    = NoopStateHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetStateHooks registers custom state hooks.
func SetStateHooks(h StateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stateHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// State returns the registered state hooks.
func State() StateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stateHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	stateHooks = NoopStateHooks{}
	cacheHooks = NoopCacheHooks{}
}
