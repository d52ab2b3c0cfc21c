package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1/verdict/grants", forge.WithGroupTags("grants"))

	if err := g.POST("", a.createGrant,
		forge.WithSummary("Store a grant"),
		forge.WithDescription("Validates the grant against the generated grant schema and stores it."),
		forge.WithOperationID("verdictCreateGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithResponseSchema(http.StatusCreated, "Stored grant", GrantResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithOperationID("verdictListGrants"),
		forge.WithResponseSchema(http.StatusOK, "Stored grants", ListGrantsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/{grantId}", a.getGrant,
		forge.WithSummary("Get a grant"),
		forge.WithOperationID("verdictGetGrant"),
		forge.WithResponseSchema(http.StatusOK, "Stored grant", GrantResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/{grantId}", a.deleteGrant,
		forge.WithSummary("Delete a grant"),
		forge.WithOperationID("verdictDeleteGrant"),
		forge.WithResponseSchema(http.StatusOK, "Deletion result", DeleteGrantResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*GrantResponse, error) {
	grant := toGrant(req)

	// Reject grants the engine would refuse to evaluate.
	if errs := a.eng.ValidateGrant(grant); len(errs) > 0 {
		return nil, forge.BadRequest(errs[0].Message)
	}

	rec, err := a.store.Add(ctx.Context(), grant)
	if err != nil {
		return nil, mapError(err)
	}
	a.eng.Plugins().EmitGrantStored(ctx.Context(), rec.ID, rec.Grant)

	resp := toGrantResponse(rec)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) getGrant(ctx forge.Context, req *GetGrantRequest) (*GrantResponse, error) {
	grantID, err := id.ParseGrantID(req.GrantID)
	if err != nil {
		return nil, forge.BadRequest("invalid grant id")
	}

	rec, err := a.store.Get(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toGrantResponse(rec)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) (*ListGrantsResponse, error) {
	filter := &grantstore.ListFilter{
		Effect: verdict.Effect(req.Effect),
		Action: req.Action,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}

	records, err := a.store.List(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.store.Count(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListGrantsResponse{
		Grants: make([]GrantResponse, len(records)),
		Total:  total,
	}
	for i, rec := range records {
		resp.Grants[i] = *toGrantResponse(rec)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) deleteGrant(ctx forge.Context, req *GetGrantRequest) (*DeleteGrantResponse, error) {
	grantID, err := id.ParseGrantID(req.GrantID)
	if err != nil {
		return nil, forge.BadRequest("invalid grant id")
	}

	if err := a.store.Delete(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}
	a.eng.Plugins().EmitGrantRemoved(ctx.Context(), grantID)

	resp := &DeleteGrantResponse{Deleted: true}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toGrant(r *CreateGrantRequest) verdict.Grant {
	actions := r.Actions
	if actions == nil {
		actions = []string{}
	}
	data := r.Data
	if data == nil {
		data = map[string]any{}
	}
	contextSchema := r.ContextSchema
	if contextSchema == nil {
		contextSchema = map[string]any{}
	}
	return verdict.Grant{
		Effect:            verdict.Effect(r.Effect),
		Actions:           actions,
		Query:             r.Query,
		QueryValidation:   verdict.QueryValidation(r.QueryValidation),
		Equality:          r.Equality,
		Data:              data,
		ContextSchema:     contextSchema,
		ContextValidation: verdict.ContextValidation(r.ContextValidation),
	}
}
