package dto

import (
	"net/http"

	"github.com/mrp/backend/internal/domain/shared"
)

// HTTP-layer error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// statusByCode maps stable error codes to HTTP status codes. Codes not
// listed here (the per-operation *_ERROR codes included) map to 500.
var statusByCode = map[string]int{
	shared.CodeValidation:              http.StatusBadRequest,
	shared.CodeEntityNotFound:          http.StatusNotFound,
	shared.CodeBusinessRuleViolation:   http.StatusUnprocessableEntity,
	shared.CodeInvalidStatusTransition: http.StatusUnprocessableEntity,
	ErrCodeBadRequest:                  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
