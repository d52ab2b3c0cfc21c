package api

// ──────────────────────────────────────────────────
// Evaluation requests
// ──────────────────────────────────────────────────

// EvaluateRequest is the request body for the authorize and audit
// endpoints. Validation levels default to "grant" when omitted.
type EvaluateRequest struct {
	Identities        map[string][]any `json:"identities" description:"Identity instances keyed by identity type"`
	ResourceType      string           `json:"resource_type" description:"Resource type the request targets"`
	Action            string           `json:"action" description:"Resource action being requested"`
	Resource          any              `json:"resource" description:"Resource instance"`
	Parents           map[string][]any `json:"parents,omitempty" description:"Parent resource instances keyed by type"`
	Children          map[string][]any `json:"children,omitempty" description:"Child resource instances keyed by type"`
	QueryValidation   string           `json:"query_validation,omitempty" description:"Query error policy (grant, validate, error, critical)"`
	Context           map[string]any   `json:"context,omitempty" description:"Additional request context"`
	ContextValidation string           `json:"context_validation,omitempty" description:"Context validation policy (grant, none, validate, error, critical)"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// CreateGrantRequest is the body for storing a grant.
type CreateGrantRequest struct {
	Effect            string         `json:"effect" description:"allow or deny"`
	Actions           []string       `json:"actions" description:"Actions the grant applies to (empty matches all)"`
	Query             string         `json:"query" description:"JMESPath query over the evaluation payload"`
	QueryValidation   string         `json:"query_validation" description:"Query error policy (validate, error, critical)"`
	Equality          any            `json:"equality" description:"Expected query result"`
	Data              map[string]any `json:"data,omitempty" description:"Opaque data available at query time"`
	ContextSchema     any            `json:"context_schema,omitempty" description:"JSON Schema for the request context"`
	ContextValidation string         `json:"context_validation" description:"Context validation policy (none, validate, error, critical)"`
}

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters for listing grants.
type ListGrantsRequest struct {
	Effect string `query:"effect" description:"Filter by effect (allow or deny)"`
	Action string `query:"action" description:"Filter by applicable action"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}
