// Package middleware provides HTTP authorization middleware for Verdict.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
)

// IdentityResolver extracts the caller's identity instances from the
// request context, keyed by identity type.
type IdentityResolver func(ctx forge.Context) map[string][]any

// DefaultIdentityResolver resolves the Forge user ID (from Authsome)
// into a single "user" identity, falling back to anonymous.
func DefaultIdentityResolver(ctx forge.Context) map[string][]any {
	userID := forge.UserIDFromContext(ctx.Context())
	if userID == "" {
		userID = "anonymous"
	}
	return map[string][]any{
		"user": {map[string]any{"id": userID}},
	}
}

// Require enforces authorization. It resolves the caller's identities,
// loads the stored grants applicable to the action, and authorizes a
// request for the resource type with the resource taken from the "id"
// path parameter. Validation levels defer to each grant.
func Require(eng *verdict.Engine, store grantstore.Store, resourceType, action string, resolve IdentityResolver) forge.Middleware {
	if resolve == nil {
		resolve = DefaultIdentityResolver
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if authorized(ctx, eng, store, resourceType, action, resolve) {
				return next(ctx)
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the actions is authorized.
func RequireAny(eng *verdict.Engine, store grantstore.Store, resourceType string, actions []string, resolve IdentityResolver) forge.Middleware {
	if resolve == nil {
		resolve = DefaultIdentityResolver
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, action := range actions {
				if authorized(ctx, eng, store, resourceType, action, resolve) {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL actions are authorized.
func RequireAll(eng *verdict.Engine, store grantstore.Store, resourceType string, actions []string, resolve IdentityResolver) forge.Middleware {
	if resolve == nil {
		resolve = DefaultIdentityResolver
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, action := range actions {
				if !authorized(ctx, eng, store, resourceType, action, resolve) {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

func authorized(ctx forge.Context, eng *verdict.Engine, store grantstore.Store, resourceType, action string, resolve IdentityResolver) bool {
	grants, err := grantstore.LoadGrants(ctx.Context(), store, &grantstore.ListFilter{Action: action})
	if err != nil {
		return false
	}

	req := &verdict.Request{
		Identities:        resolve(ctx),
		ResourceType:      resourceType,
		Action:            action,
		Resource:          map[string]any{"id": ctx.Param("id")},
		QueryValidation:   verdict.QueryValidationGrant,
		ContextValidation: verdict.ContextValidationGrant,
	}

	resp := eng.Authorize(ctx.Context(), req, grants)
	return resp.Authorized
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
