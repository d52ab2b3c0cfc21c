package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, grantstore.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, verdict.ErrInvalidGrants) || errors.Is(err, verdict.ErrInvalidRequest) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrInvalidDefinitions) {
		return forge.BadRequest(err.Error())
	}
	return err
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
