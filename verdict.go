// Package verdict provides grant-based policy evaluation for Go.
//
// Verdict decides whether a request is authorized by evaluating it against
// a set of allow/deny grants. Each grant carries a query that is run over
// the request by an injected query evaluator; a grant applies when the
// query result equals the grant's expected value. Deny grants always
// override allow grants, and requests with no applicable grant are
// implicitly denied.
//
// The shape of identities, resources, grants, and requests is governed by
// JSON Schemas generated from user-supplied identity and resource
// definitions.
//
//	eng, err := verdict.NewEngine(identityDefs, resourceDefs)
//	resp := eng.Authorize(ctx, &verdict.Request{
//	    Identities:        map[string][]any{"user": {map[string]any{"id": "user_123"}}},
//	    ResourceType:      "document",
//	    Action:            "read",
//	    Resource:          map[string]any{"id": "doc_456"},
//	    QueryValidation:   verdict.QueryValidationGrant,
//	    ContextValidation: verdict.ContextValidationGrant,
//	}, grants)
package verdict

// Effect is the grant outcome classification.
type Effect string

const (
	// EffectAllow permits matching requests.
	EffectAllow Effect = "allow"

	// EffectDeny blocks matching requests. Any applicable deny grant
	// overrides every allow grant.
	EffectDeny Effect = "deny"
)

// QueryValidation controls how query-evaluation errors are treated.
type QueryValidation string

const (
	// QueryValidationGrant defers to the grant's own query_validation
	// setting. Only meaningful on a request.
	QueryValidationGrant QueryValidation = "grant"

	// QueryValidationValidate silently treats a query error as
	// "grant not applicable".
	QueryValidationValidate QueryValidation = "validate"

	// QueryValidationError records a non-critical error and treats the
	// grant as not applicable.
	QueryValidationError QueryValidation = "error"

	// QueryValidationCritical records a critical error and halts the
	// workflow early.
	QueryValidationCritical QueryValidation = "critical"
)

// Resolve applies the request-over-grant override rule: the grant's level
// is used only when the request-level setting is the "grant" sentinel.
func (qv QueryValidation) Resolve(grantLevel QueryValidation) QueryValidation {
	if qv == QueryValidationGrant {
		return grantLevel
	}
	return qv
}

// ContextValidation controls how the request context is validated against
// a grant's context schema.
type ContextValidation string

const (
	// ContextValidationGrant defers to the grant's own context_validation
	// setting. Only meaningful on a request.
	ContextValidationGrant ContextValidation = "grant"

	// ContextValidationNone skips context validation entirely.
	ContextValidationNone ContextValidation = "none"

	// ContextValidationValidate silently treats an invalid context as
	// "grant not applicable".
	ContextValidationValidate ContextValidation = "validate"

	// ContextValidationError records a non-critical error and treats the
	// grant as not applicable.
	ContextValidationError ContextValidation = "error"

	// ContextValidationCritical records a critical error and halts the
	// workflow early.
	ContextValidationCritical ContextValidation = "critical"
)

// Resolve applies the request-over-grant override rule: the grant's level
// is used only when the request-level setting is the "grant" sentinel.
func (cv ContextValidation) Resolve(grantLevel ContextValidation) ContextValidation {
	if cv == ContextValidationGrant {
		return grantLevel
	}
	return cv
}

// Grant is a single enacted authorization rule.
type Grant struct {
	// Effect decides what an applicable grant means for the request:
	// allow or deny.
	Effect Effect `json:"effect"`

	// Actions lists the resource actions this grant applies to.
	// An empty list matches any action.
	Actions []string `json:"actions"`

	// Query is the expression run over the evaluation payload
	// {"request": <request>, "grant": <grant>}.
	Query string `json:"query"`

	// QueryValidation is the grant-level policy for query errors.
	QueryValidation QueryValidation `json:"query_validation"`

	// Equality is the value the query must produce, compared
	// structurally, for the grant to be applicable.
	Equality any `json:"equality"`

	// Data is opaque payload made available to the query at evaluation
	// time so it does not have to be embedded in the query text.
	Data map[string]any `json:"data"`

	// ContextSchema is the JSON Schema the request context is validated
	// against when context validation is enabled.
	ContextSchema any `json:"context_schema"`

	// ContextValidation is the grant-level policy for context-schema
	// mismatches.
	ContextValidation ContextValidation `json:"context_validation"`
}

// Request is a single authorization question.
type Request struct {
	// Identities maps identity type names to the caller's identity
	// instances of that type.
	Identities map[string][]any `json:"identities"`

	// ResourceType names the resource definition the request targets.
	ResourceType string `json:"resource_type"`

	// Action is the resource action being requested. It must be one of
	// the actions declared for ResourceType.
	Action string `json:"action"`

	// Resource is the resource instance, conforming to the resource
	// type's schema.
	Resource any `json:"resource"`

	// Parents maps parent resource type names to instances. The keys
	// must exactly match the resource type's declared parent types.
	Parents map[string][]any `json:"parents"`

	// Children maps child resource type names to instances. The keys
	// must exactly match the resource type's declared child types.
	Children map[string][]any `json:"children"`

	// QueryValidation is the request-level policy for query errors.
	// The "grant" sentinel defers to each grant's own setting.
	QueryValidation QueryValidation `json:"query_validation"`

	// Context carries additional request context, validated per grant
	// against each grant's context schema.
	Context map[string]any `json:"context"`

	// ContextValidation is the request-level policy for context-schema
	// mismatches. The "grant" sentinel defers to each grant's setting.
	ContextValidation ContextValidation `json:"context_validation"`
}

// AuditResponse is the outcome of the audit workflow: every grant that is
// applicable to the request, rather than a single verdict.
type AuditResponse struct {
	// Completed is false when a critical error halted the scan early.
	Completed bool `json:"completed"`

	// Grants lists the applicable grants in evaluation order.
	Grants []Grant `json:"grants"`

	// Errors aggregates every recorded error, in evaluation order.
	Errors Errors `json:"errors"`
}

// AuthorizeResponse is the outcome of the authorize workflow.
type AuthorizeResponse struct {
	// Authorized is true only when an allow grant applies and no deny
	// grant does.
	Authorized bool `json:"authorized"`

	// Completed is false when a critical error or a validation failure
	// halted the workflow early.
	Completed bool `json:"completed"`

	// Grant is the grant responsible for the decision, if any.
	Grant *Grant `json:"grant"`

	// Message explains why the request was or was not authorized.
	Message string `json:"message"`

	// Errors aggregates every recorded error, in evaluation order.
	Errors Errors `json:"errors"`
}

// Decision messages returned on the authorize path.
const (
	msgCriticalError   = "A critical error has occurred. Therefore, the request is not authorized."
	msgDenyApplicable  = "A deny grant is applicable to the request. Therefore, the request is not authorized."
	msgAllowApplicable = "An allow grant is applicable to the request, and there are no deny grants that are applicable to the request. Therefore, the request is authorized."
	msgImplicitDeny    = "No allow or deny grants are applicable to the request. Therefore, the request is implicitly denied and is not authorized."

	msgInvalidDefinitions = "One or more identity and/or resource definitions are not valid. Therefore, the request is not authorized."
	msgInvalidGrants      = "One or more grants are not valid. Therefore, the request is not authorized."
	msgInvalidRequest     = "The request is not valid. Therefore the request is not authorized."
)
