package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/verdict/id"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeAuthorizeEntry struct {
	name string
	hook BeforeAuthorize
}
type afterAuthorizeEntry struct {
	name string
	hook AfterAuthorize
}
type beforeAuditEntry struct {
	name string
	hook BeforeAudit
}
type afterAuditEntry struct {
	name string
	hook AfterAudit
}
type grantStoredEntry struct {
	name string
	hook GrantStored
}
type grantRemovedEntry struct {
	name string
	hook GrantRemoved
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeAuthorize []beforeAuthorizeEntry
	afterAuthorize  []afterAuthorizeEntry
	beforeAudit     []beforeAuditEntry
	afterAudit      []afterAuditEntry
	grantStored     []grantStoredEntry
	grantRemoved    []grantRemovedEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeAuthorize); ok {
		r.beforeAuthorize = append(r.beforeAuthorize, beforeAuthorizeEntry{name, h})
	}
	if h, ok := p.(AfterAuthorize); ok {
		r.afterAuthorize = append(r.afterAuthorize, afterAuthorizeEntry{name, h})
	}
	if h, ok := p.(BeforeAudit); ok {
		r.beforeAudit = append(r.beforeAudit, beforeAuditEntry{name, h})
	}
	if h, ok := p.(AfterAudit); ok {
		r.afterAudit = append(r.afterAudit, afterAuditEntry{name, h})
	}
	if h, ok := p.(GrantStored); ok {
		r.grantStored = append(r.grantStored, grantStoredEntry{name, h})
	}
	if h, ok := p.(GrantRemoved); ok {
		r.grantRemoved = append(r.grantRemoved, grantRemovedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Authorize event emitters
// ──────────────────────────────────────────────────

// EmitBeforeAuthorize notifies all plugins that implement BeforeAuthorize.
func (r *Registry) EmitBeforeAuthorize(ctx context.Context, req any) {
	for _, e := range r.beforeAuthorize {
		if err := e.hook.OnBeforeAuthorize(ctx, req); err != nil {
			r.logHookError("OnBeforeAuthorize", e.name, err)
		}
	}
}

// EmitAfterAuthorize notifies all plugins that implement AfterAuthorize.
func (r *Registry) EmitAfterAuthorize(ctx context.Context, req, resp any) {
	for _, e := range r.afterAuthorize {
		if err := e.hook.OnAfterAuthorize(ctx, req, resp); err != nil {
			r.logHookError("OnAfterAuthorize", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Audit event emitters
// ──────────────────────────────────────────────────

// EmitBeforeAudit notifies all plugins that implement BeforeAudit.
func (r *Registry) EmitBeforeAudit(ctx context.Context, req any) {
	for _, e := range r.beforeAudit {
		if err := e.hook.OnBeforeAudit(ctx, req); err != nil {
			r.logHookError("OnBeforeAudit", e.name, err)
		}
	}
}

// EmitAfterAudit notifies all plugins that implement AfterAudit.
func (r *Registry) EmitAfterAudit(ctx context.Context, req, resp any) {
	for _, e := range r.afterAudit {
		if err := e.hook.OnAfterAudit(ctx, req, resp); err != nil {
			r.logHookError("OnAfterAudit", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Grant store event emitters
// ──────────────────────────────────────────────────

// EmitGrantStored notifies all plugins that implement GrantStored.
func (r *Registry) EmitGrantStored(ctx context.Context, grantID id.GrantID, grant any) {
	for _, e := range r.grantStored {
		if err := e.hook.OnGrantStored(ctx, grantID, grant); err != nil {
			r.logHookError("OnGrantStored", e.name, err)
		}
	}
}

// EmitGrantRemoved notifies all plugins that implement GrantRemoved.
func (r *Registry) EmitGrantRemoved(ctx context.Context, grantID id.GrantID) {
	for _, e := range r.grantRemoved {
		if err := e.hook.OnGrantRemoved(ctx, grantID); err != nil {
			r.logHookError("OnGrantRemoved", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
