package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerSchemaRoutes(router forge.Router) error {
	g := router.Group("/v1/verdict", forge.WithGroupTags("schemas"))

	return g.GET("/schemas", a.getSchemas,
		forge.WithSummary("Get generated schemas"),
		forge.WithDescription("Returns the grant, errors, request, audit, and authorize schemas generated from the engine's definitions."),
		forge.WithOperationID("verdictGetSchemas"),
		forge.WithResponseSchema(http.StatusOK, "Generated schemas", SchemasResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getSchemas(ctx forge.Context, _ *struct{}) (*SchemasResponse, error) {
	resp := &SchemasResponse{Schemas: a.eng.Schemas()}
	return resp, ctx.JSON(http.StatusOK, resp)
}
