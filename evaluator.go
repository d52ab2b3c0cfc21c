package verdict

import "reflect"

// GrantEvaluation is the outcome of evaluating a single grant against a
// request.
type GrantEvaluation struct {
	// Applicable reports whether the grant's query produced its
	// expected equality value for this request.
	Applicable bool

	// Critical reports that a critical error was recorded and the
	// surrounding workflow must halt.
	Critical bool

	// Errors holds any context or query errors recorded under the
	// "error" and "critical" validation levels.
	Errors Errors
}

// EvaluateGrant decides whether a single grant is applicable to a
// request. It never returns an applicability verdict and an error for
// the same cause: a failed context check or query either silently rules
// the grant out or records an error, per the resolved validation levels.
//
// The request's validation levels override the grant's unless set to the
// "grant" sentinel.
func EvaluateGrant(req *Request, grant Grant, searcher Searcher, validator SchemaValidator) (GrantEvaluation, error) {
	eval := GrantEvaluation{Errors: newErrors()}

	if len(grant.Actions) > 0 && !containsString(grant.Actions, req.Action) {
		return eval, nil
	}

	reqDoc, err := requestDocument(req)
	if err != nil {
		return eval, err
	}
	grantDoc, err := grantDocument(grant)
	if err != nil {
		return eval, err
	}

	cVal := req.ContextValidation.Resolve(grant.ContextValidation)
	if cVal != ContextValidationNone {
		if verr := validator.Validate(grantDoc["context_schema"], reqDoc["context"]); verr != nil {
			critical := cVal == ContextValidationCritical
			if cVal == ContextValidationError || critical {
				eval.Errors.Context = append(eval.Errors.Context, ContextError{
					Message:  verr.Error(),
					Critical: critical,
					Grant:    grant,
				})
				eval.Critical = critical
			}
			return eval, nil
		}
	}

	result, serr := searcher.Search(grant.Query, queryPayload(reqDoc, grantDoc))
	if serr != nil {
		qVal := req.QueryValidation.Resolve(grant.QueryValidation)
		critical := qVal == QueryValidationCritical
		if qVal == QueryValidationError || critical {
			eval.Errors.Query = append(eval.Errors.Query, QueryError{
				Message:  serr.Error(),
				Critical: critical,
				Grant:    grant,
			})
			eval.Critical = critical
		}
		return eval, nil
	}

	// Equality is structural over the normalized JSON forms, so the
	// grant's expected value is taken from the grant document rather
	// than the raw Grant field.
	eval.Applicable = reflect.DeepEqual(result, grantDoc["equality"])
	return eval, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
