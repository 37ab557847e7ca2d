package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Given an HTTP status derived from the error code
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is wrapped via core.NewUserError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON with go-chi/render

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// codeStatus maps user error codes to HTTP status codes.
var codeStatus = map[string]int{
	"FILE001": http.StatusRequestEntityTooLarge,
	"FILE002": http.StatusUnprocessableEntity,
	"FILE004": http.StatusBadRequest,
	"FILE006": http.StatusBadRequest,
	"FILE007": http.StatusBadRequest,
	"FILE008": http.StatusBadRequest,
	"VAL004":  http.StatusUnprocessableEntity,
	"VAL007":  http.StatusBadRequest,
	"VAL008":  http.StatusBadRequest,
	"VAL009":  http.StatusNotFound,
	"UPL002":  http.StatusServiceUnavailable,
	"UPL004":  http.StatusRequestTimeout,
	"UPL005":  http.StatusGatewayTimeout,
	"RATE001": http.StatusTooManyRequests,
}

// statusFor returns the HTTP status for a user error code.
func statusFor(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error server-side and writes the mapped
// user message as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	ue := core.NewUserError(err)
	userMsg := ue.User
	statusCode := statusFor(userMsg.Code)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", ue.Technical.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError && statusCode != http.StatusServiceUnavailable {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
