// Package api provides HTTP handlers for the Verdict evaluation engine
// and its grant store.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
)

// API wires all Verdict HTTP handlers together.
type API struct {
	eng    *verdict.Engine
	store  grantstore.Store
	router forge.Router
}

// New creates an API from an Engine, a grant store, and a Forge router.
func New(eng *verdict.Engine, store grantstore.Store, router forge.Router) *API {
	return &API{eng: eng, store: store, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("verdict: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerEvaluateRoutes,
		a.registerGrantRoutes,
		a.registerSchemaRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
