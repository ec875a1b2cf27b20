package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	w := NoopWorkspaceHooks{}
	w.OnLoad(ctx, "shop", 12, time.Millisecond, nil)
	w.OnSave(ctx, "shop", 2048, time.Millisecond, nil)
	w.OnOperationStart(ctx, "delete", "shop")
	w.OnOperationComplete(ctx, "delete", "shop", 4, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "summary")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/projects/{name}")
	h.OnResponse(ctx, "GET", "/v1/projects/{name}", 200, time.Millisecond)
}

type testWorkspaceHooks struct {
	NoopWorkspaceHooks
	ops []string
}

func (h *testWorkspaceHooks) OnOperationStart(_ context.Context, op, _ string) {
	h.ops = append(h.ops, op)
}

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Workspace().(NoopWorkspaceHooks); !ok {
		t.Error("Workspace() should return NoopWorkspaceHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	ws := &testWorkspaceHooks{}
	ch := &testCacheHooks{}
	SetWorkspaceHooks(ws)
	SetCacheHooks(ch)

	Workspace().OnOperationStart(context.Background(), "duplicate", "shop")
	Cache().OnCacheHit(context.Background(), "summary")
	if len(ws.ops) != 1 || ws.ops[0] != "duplicate" {
		t.Errorf("workspace ops = %v", ws.ops)
	}
	if ch.hits != 1 {
		t.Errorf("cache hits = %d", ch.hits)
	}

	// nil is ignored
	SetWorkspaceHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)
	if Workspace() != WorkspaceHooks(ws) {
		t.Error("SetWorkspaceHooks(nil) replaced the hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}
