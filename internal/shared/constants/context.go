package constants

// gin context keys shared between middleware and handlers
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
	ContextKeyUserID        = "user_id"
	ContextKeyUserEmail     = "user_email"
	ContextKeyProfile       = "profile"
	ContextKeyOrganization  = "organization"
	ContextKeyMemberRole    = "member_role"
)

// HTTP headers
const (
	HeaderRequestID      = "X-Request-Id"
	HeaderCorrelationID  = "X-Correlation-Id"
	HeaderOrganizationID = "X-Organization-Id"
	HeaderInternalSecret = "X-Internal-Secret"
)
