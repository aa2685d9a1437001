package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcbuilder/pkg/observability"
)

// logHooks reports resolver, install, cache and HTTP events to the debug log.
// They are registered only with --verbose.
type logHooks struct {
	l *log.Logger
}

func (c *CLI) registerLogHooks() {
	h := logHooks{l: c.Logger.WithPrefix("trace")}
	observability.SetResolveHooks(h)
	observability.SetInstallHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnFetch(_ context.Context, key string, d time.Duration, err error) {
	if err != nil {
		h.l.Debug("fetch failed", "file", key, "took", d.Round(time.Millisecond), "err", err)
		return
	}
	h.l.Debug("fetched", "file", key, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnResolveComplete(_ context.Context, roots, resolved, failed int, d time.Duration) {
	h.l.Debug("resolved", "roots", roots, "files", resolved, "failed", failed, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnDownloadStart(_ context.Context, name string) {
	h.l.Debug("download start", "file", name)
}

func (h logHooks) OnDownloadComplete(_ context.Context, name string, d time.Duration, err error) {
	if err != nil {
		h.l.Debug("download failed", "file", name, "err", err)
		return
	}
	h.l.Debug("download done", "file", name, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnReconcile(_ context.Context, removed int) {
	h.l.Debug("reconciled", "removed", removed)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.l.Debug("cache hit", "kind", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.l.Debug("cache miss", "kind", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.l.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.l.Debug("request", "method", method, "url", host+path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.l.Debug("response", "method", method, "url", host+path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.l.Debug("request failed", "method", method, "url", host+path, "err", err)
}
