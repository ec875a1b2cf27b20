// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults do
// nothing. Applications register their own implementations once at startup,
// which keeps backends such as Prometheus or OpenTelemetry out of the
// library packages.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWorkspaceHooks(&myWorkspaceHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Workspace().OnOperationStart(ctx, "duplicate", name)
//	// ... do work ...
//	observability.Workspace().OnOperationComplete(ctx, "duplicate", name, affected, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Workspace Hooks
// =============================================================================

// WorkspaceHooks receives events from project operations.
type WorkspaceHooks interface {
	// OnLoad records a decoded project with its record count.
	OnLoad(ctx context.Context, project string, records int, duration time.Duration, err error)
	// OnSave records an encoded project with its size in bytes.
	OnSave(ctx context.Context, project string, size int, duration time.Duration, err error)

	// OnOperationStart and OnOperationComplete bracket an editing operation
	// such as "duplicate" or "delete". affected counts touched nodes.
	OnOperationStart(ctx context.Context, op, project string)
	OnOperationComplete(ctx context.Context, op, project string, affected int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)
	// OnResponse records the response status and handling time.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWorkspaceHooks is a no-op implementation of WorkspaceHooks.
type NoopWorkspaceHooks struct{}

func (NoopWorkspaceHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopWorkspaceHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopWorkspaceHooks) OnOperationStart(context.Context, string, string)          {}
func (NoopWorkspaceHooks) OnOperationComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	workspaceHooks WorkspaceHooks = NoopWorkspaceHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetWorkspaceHooks registers workspace hooks. A nil argument is ignored.
func SetWorkspaceHooks(h WorkspaceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		workspaceHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil argument is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Workspace returns the registered workspace hooks.
func Workspace() WorkspaceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return workspaceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	workspaceHooks = NoopWorkspaceHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
