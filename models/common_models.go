package models

// Error codes carried on every non-2xx response, so operators can tell a
// deployment misconfiguration apart from a runtime failure.
const (
	CodeValidation = "validation_error"
	CodeConfig     = "config_error"
	CodeUpstream   = "upstream_error"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// OKResponse acknowledges a request that produces no other payload.
type OKResponse struct {
	OK bool `json:"ok"`
}
