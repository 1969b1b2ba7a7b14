package response

type StandardApiResponse struct {
	Status        string      `json:"status"`                  // "success" or "error"
	StatusCode    int         `json:"statusCode"`              // HTTP status code
	RequestID     string      `json:"requestId,omitempty"`     // Echoed X-Request-Id
	CorrelationID string      `json:"correlationId,omitempty"` // Echoed X-Correlation-Id
	ErrorCode     string      `json:"errorCode,omitempty"`     // Machine-readable code on failure
	Message       string      `json:"message"`                 // Human-readable message
	Retryable     *bool       `json:"retryable,omitempty"`     // Set on failure only
	Data          interface{} `json:"data,omitempty"`          // Payload for success
	Errors        interface{} `json:"errors,omitempty"`        // Validation or error details
}
