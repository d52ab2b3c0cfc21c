package verdict

import (
	"context"
	"log/slog"

	"github.com/xraph/verdict/definition"
	"github.com/xraph/verdict/plugin"
	"github.com/xraph/verdict/schema"
)

// Engine evaluates requests against grants for a fixed set of identity
// and resource definitions. The definitions are validated and their
// schemas generated once at construction, so per-call work is limited to
// validating the grants and the request.
//
// An Engine is safe for concurrent use.
type Engine struct {
	identityDefs []definition.Identity
	resourceDefs []definition.Resource
	schemas      schema.Schemas
	searcher     Searcher
	validator    SchemaValidator
	logger       *slog.Logger
	plugins      *plugin.Registry
}

// NewEngine validates the definitions, generates their schemas, and
// returns an engine. If any definition is invalid it returns an
// *InvalidDefinitionsError carrying every recorded problem; errors.Is
// matches ErrInvalidDefinitions.
func NewEngine(identityDefs []definition.Identity, resourceDefs []definition.Resource, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if defErrs := ValidateDefinitions(identityDefs, resourceDefs, o.validator); len(defErrs) > 0 {
		return nil, &InvalidDefinitionsError{Errors: defErrs}
	}

	registry := plugin.NewRegistry(o.logger)
	for _, p := range o.plugins {
		registry.Register(p)
	}

	return &Engine{
		identityDefs: identityDefs,
		resourceDefs: resourceDefs,
		schemas:      schema.Generate(identityDefs, resourceDefs),
		searcher:     o.searcher,
		validator:    o.validator,
		logger:       o.logger,
		plugins:      registry,
	}, nil
}

// Schemas returns the schemas generated from the engine's definitions.
func (e *Engine) Schemas() schema.Schemas { return e.schemas }

// Plugins returns the engine's plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// ValidateGrant checks a single grant against the generated grant
// schema. Useful for rejecting a grant before storing it.
func (e *Engine) ValidateGrant(grant Grant) []GrantError {
	return ValidateGrants([]Grant{grant}, e.schemas.Grant, e.validator)
}

// Audit returns every grant applicable to the request. The grants and
// the request are schema-validated first; a validation failure stops the
// workflow with Completed false and no grants scanned.
func (e *Engine) Audit(ctx context.Context, req *Request, grants []Grant) AuditResponse {
	e.plugins.EmitBeforeAudit(ctx, req)

	resp := e.audit(req, grants)

	e.logger.Debug("audit evaluated",
		slog.String("resource_type", req.ResourceType),
		slog.String("action", req.Action),
		slog.Int("grants_in", len(grants)),
		slog.Int("grants_applicable", len(resp.Grants)),
		slog.Bool("completed", resp.Completed),
	)
	e.plugins.EmitAfterAudit(ctx, req, &resp)

	return resp
}

func (e *Engine) audit(req *Request, grants []Grant) AuditResponse {
	errs := newErrors()

	if grantErrs := ValidateGrants(grants, e.schemas.Grant, e.validator); len(grantErrs) > 0 {
		errs.Grant = grantErrs
		return AuditResponse{Completed: false, Grants: []Grant{}, Errors: errs}
	}

	if reqErrs := ValidateRequest(req, e.schemas.Request, e.validator); len(reqErrs) > 0 {
		errs.Request = reqErrs
		return AuditResponse{Completed: false, Grants: []Grant{}, Errors: errs}
	}

	return Audit(req, grants, e.searcher, e.validator)
}

// Authorize decides whether the request is authorized. The grants and
// the request are schema-validated first; a validation failure stops the
// workflow with Completed false.
func (e *Engine) Authorize(ctx context.Context, req *Request, grants []Grant) AuthorizeResponse {
	e.plugins.EmitBeforeAuthorize(ctx, req)

	resp := e.authorize(req, grants)

	e.logger.Debug("authorize evaluated",
		slog.String("resource_type", req.ResourceType),
		slog.String("action", req.Action),
		slog.Bool("authorized", resp.Authorized),
		slog.Bool("completed", resp.Completed),
	)
	e.plugins.EmitAfterAuthorize(ctx, req, &resp)

	return resp
}

func (e *Engine) authorize(req *Request, grants []Grant) AuthorizeResponse {
	errs := newErrors()

	if grantErrs := ValidateGrants(grants, e.schemas.Grant, e.validator); len(grantErrs) > 0 {
		errs.Grant = grantErrs
		return AuthorizeResponse{
			Authorized: false,
			Completed:  false,
			Grant:      nil,
			Message:    msgInvalidGrants,
			Errors:     errs,
		}
	}

	if reqErrs := ValidateRequest(req, e.schemas.Request, e.validator); len(reqErrs) > 0 {
		errs.Request = reqErrs
		return AuthorizeResponse{
			Authorized: false,
			Completed:  false,
			Grant:      nil,
			Message:    msgInvalidRequest,
			Errors:     errs,
		}
	}

	return Authorize(req, grants, e.searcher, e.validator)
}

// Audit scans every grant in order and collects the applicable ones.
// Context and query errors recorded under the "error" level are merged
// into the response; a critical error halts the scan with Completed
// false. No schema validation is performed.
func Audit(req *Request, grants []Grant, searcher Searcher, validator SchemaValidator) AuditResponse {
	resp := AuditResponse{
		Completed: true,
		Grants:    []Grant{},
		Errors:    newErrors(),
	}

	for _, grant := range grants {
		eval := evaluate(req, grant, searcher, validator)
		resp.Errors.merge(eval.Errors)

		if eval.Critical {
			resp.Completed = false
			return resp
		}
		if eval.Applicable {
			resp.Grants = append(resp.Grants, grant)
		}
	}

	return resp
}

// Authorize evaluates deny grants first, then allow grants, in input
// order within each group. The first applicable deny grant denies the
// request; otherwise the first applicable allow grant authorizes it; a
// request no grant applies to is implicitly denied. A critical error
// halts evaluation with Completed false. No schema validation is
// performed.
func Authorize(req *Request, grants []Grant, searcher Searcher, validator SchemaValidator) AuthorizeResponse {
	errs := newErrors()

	var allowGrants, denyGrants []Grant
	for _, grant := range grants {
		if len(grant.Actions) > 0 && !containsString(grant.Actions, req.Action) {
			continue
		}
		switch grant.Effect {
		case EffectDeny:
			denyGrants = append(denyGrants, grant)
		default:
			allowGrants = append(allowGrants, grant)
		}
	}

	for _, grant := range denyGrants {
		eval := evaluate(req, grant, searcher, validator)
		errs.merge(eval.Errors)

		if eval.Critical {
			g := grant
			return AuthorizeResponse{
				Authorized: false,
				Completed:  false,
				Grant:      &g,
				Message:    msgCriticalError,
				Errors:     errs,
			}
		}
		if eval.Applicable {
			g := grant
			return AuthorizeResponse{
				Authorized: false,
				Completed:  true,
				Grant:      &g,
				Message:    msgDenyApplicable,
				Errors:     errs,
			}
		}
	}

	for _, grant := range allowGrants {
		eval := evaluate(req, grant, searcher, validator)
		errs.merge(eval.Errors)

		if eval.Critical {
			g := grant
			return AuthorizeResponse{
				Authorized: false,
				Completed:  false,
				Grant:      &g,
				Message:    msgCriticalError,
				Errors:     errs,
			}
		}
		if eval.Applicable {
			g := grant
			return AuthorizeResponse{
				Authorized: true,
				Completed:  true,
				Grant:      &g,
				Message:    msgAllowApplicable,
				Errors:     errs,
			}
		}
	}

	return AuthorizeResponse{
		Authorized: false,
		Completed:  true,
		Grant:      nil,
		Message:    msgImplicitDeny,
		Errors:     errs,
	}
}

// evaluate wraps EvaluateGrant, folding an encoding failure into a
// critical query error so the workflow halts instead of silently
// skipping the grant.
func evaluate(req *Request, grant Grant, searcher Searcher, validator SchemaValidator) GrantEvaluation {
	eval, err := EvaluateGrant(req, grant, searcher, validator)
	if err != nil {
		eval.Critical = true
		eval.Errors.Query = append(eval.Errors.Query, QueryError{
			Message:  err.Error(),
			Critical: true,
			Grant:    grant,
		})
	}
	return eval
}

// AuditWorkflow runs the full audit pipeline: definition validation,
// schema generation, grant validation, request validation, then the
// audit scan, short-circuiting at the first invalid stage. For repeated
// calls against a fixed definition set prefer NewEngine, which performs
// the first two stages once.
func AuditWorkflow(identityDefs []definition.Identity, resourceDefs []definition.Resource, grants []Grant, req *Request, searcher Searcher, validator SchemaValidator) AuditResponse {
	errs := newErrors()

	if defErrs := ValidateDefinitions(identityDefs, resourceDefs, validator); len(defErrs) > 0 {
		errs.Definition = defErrs
		return AuditResponse{Completed: false, Grants: []Grant{}, Errors: errs}
	}

	schemas := schema.Generate(identityDefs, resourceDefs)

	if grantErrs := ValidateGrants(grants, schemas.Grant, validator); len(grantErrs) > 0 {
		errs.Grant = grantErrs
		return AuditResponse{Completed: false, Grants: []Grant{}, Errors: errs}
	}

	if reqErrs := ValidateRequest(req, schemas.Request, validator); len(reqErrs) > 0 {
		errs.Request = reqErrs
		return AuditResponse{Completed: false, Grants: []Grant{}, Errors: errs}
	}

	return Audit(req, grants, searcher, validator)
}

// AuthorizeWorkflow runs the full authorize pipeline: definition
// validation, schema generation, grant validation, request validation,
// then authorization, short-circuiting at the first invalid stage. For
// repeated calls against a fixed definition set prefer NewEngine.
func AuthorizeWorkflow(identityDefs []definition.Identity, resourceDefs []definition.Resource, grants []Grant, req *Request, searcher Searcher, validator SchemaValidator) AuthorizeResponse {
	errs := newErrors()

	if defErrs := ValidateDefinitions(identityDefs, resourceDefs, validator); len(defErrs) > 0 {
		errs.Definition = defErrs
		return AuthorizeResponse{
			Authorized: false,
			Completed:  false,
			Grant:      nil,
			Message:    msgInvalidDefinitions,
			Errors:     errs,
		}
	}

	schemas := schema.Generate(identityDefs, resourceDefs)

	if grantErrs := ValidateGrants(grants, schemas.Grant, validator); len(grantErrs) > 0 {
		errs.Grant = grantErrs
		return AuthorizeResponse{
			Authorized: false,
			Completed:  false,
			Grant:      nil,
			Message:    msgInvalidGrants,
			Errors:     errs,
		}
	}

	if reqErrs := ValidateRequest(req, schemas.Request, validator); len(reqErrs) > 0 {
		errs.Request = reqErrs
		return AuthorizeResponse{
			Authorized: false,
			Completed:  false,
			Grant:      nil,
			Message:    msgInvalidRequest,
			Errors:     errs,
		}
	}

	return Authorize(req, grants, searcher, validator)
}
