package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
)

func (a *API) registerEvaluateRoutes(router forge.Router) error {
	g := router.Group("/v1/verdict", forge.WithGroupTags("evaluation"))

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Authorize a request"),
		forge.WithDescription("Evaluates the request against the stored grants. Deny grants override allow grants; requests with no applicable grant are implicitly denied."),
		forge.WithOperationID("verdictAuthorize"),
		forge.WithRequestSchema(EvaluateRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Authorize result", verdict.AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/audit", a.audit,
		forge.WithSummary("Audit a request"),
		forge.WithDescription("Returns every stored grant applicable to the request instead of a single verdict."),
		forge.WithOperationID("verdictAudit"),
		forge.WithRequestSchema(EvaluateRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit result", verdict.AuditResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) authorize(ctx forge.Context, req *EvaluateRequest) (*verdict.AuthorizeResponse, error) {
	if req.ResourceType == "" || req.Action == "" {
		return nil, forge.BadRequest("resource_type and action are required")
	}

	grants, err := a.loadGrants(ctx, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := a.eng.Authorize(ctx.Context(), toRequest(req), grants)
	return &resp, ctx.JSON(http.StatusOK, &resp)
}

func (a *API) audit(ctx forge.Context, req *EvaluateRequest) (*verdict.AuditResponse, error) {
	if req.ResourceType == "" || req.Action == "" {
		return nil, forge.BadRequest("resource_type and action are required")
	}

	grants, err := a.loadGrants(ctx, req.Action)
	if err != nil {
		return nil, mapError(err)
	}

	resp := a.eng.Audit(ctx.Context(), toRequest(req), grants)
	return &resp, ctx.JSON(http.StatusOK, &resp)
}

// loadGrants pages the stored grants applicable to the action out of the
// grant store, in creation order.
func (a *API) loadGrants(ctx forge.Context, action string) ([]verdict.Grant, error) {
	return grantstore.LoadGrants(ctx.Context(), a.store, &grantstore.ListFilter{Action: action})
}

func toRequest(r *EvaluateRequest) *verdict.Request {
	qv := verdict.QueryValidation(r.QueryValidation)
	if qv == "" {
		qv = verdict.QueryValidationGrant
	}
	cv := verdict.ContextValidation(r.ContextValidation)
	if cv == "" {
		cv = verdict.ContextValidationGrant
	}
	return &verdict.Request{
		Identities:        r.Identities,
		ResourceType:      r.ResourceType,
		Action:            r.Action,
		Resource:          r.Resource,
		Parents:           r.Parents,
		Children:          r.Children,
		QueryValidation:   qv,
		Context:           r.Context,
		ContextValidation: cv,
	}
}
