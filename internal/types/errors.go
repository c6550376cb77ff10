package types

// API error codes returned by the REST surface.
const (
	CodeBadRequest   = "WASH_400"
	CodeUnauthorized = "AUTH_401"
	CodeForbidden    = "AUTH_403"
	CodeNotFound     = "WASH_404"
	CodeBusy         = "WASH_409"
	CodeInternal     = "WASH_500"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be a string, map or struct.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
