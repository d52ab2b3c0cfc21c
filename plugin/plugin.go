// Package plugin defines the plugin system for Verdict.
// Plugins are notified of lifecycle events (authorize evaluated, grant
// stored, etc.) and can react — logging, metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/verdict/id"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Authorize lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeAuthorize is called before an authorize workflow is evaluated.
// The req parameter is *verdict.Request (passed as any to avoid import cycle).
type BeforeAuthorize interface {
	OnBeforeAuthorize(ctx context.Context, req any) error
}

// AfterAuthorize is called after an authorize workflow completes.
// The req parameter is *verdict.Request; resp is *verdict.AuthorizeResponse.
type AfterAuthorize interface {
	OnAfterAuthorize(ctx context.Context, req, resp any) error
}

// ──────────────────────────────────────────────────
// Audit lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeAudit is called before an audit workflow is evaluated.
// The req parameter is *verdict.Request.
type BeforeAudit interface {
	OnBeforeAudit(ctx context.Context, req any) error
}

// AfterAudit is called after an audit workflow completes.
// The req parameter is *verdict.Request; resp is *verdict.AuditResponse.
type AfterAudit interface {
	OnAfterAudit(ctx context.Context, req, resp any) error
}

// ──────────────────────────────────────────────────
// Grant store lifecycle hooks
// ──────────────────────────────────────────────────

// GrantStored is called after a grant is written to the grant store.
// The grant parameter is the stored verdict.Grant.
type GrantStored interface {
	OnGrantStored(ctx context.Context, grantID id.GrantID, grant any) error
}

// GrantRemoved is called after a grant is deleted from the grant store.
type GrantRemoved interface {
	OnGrantRemoved(ctx context.Context, grantID id.GrantID) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
