package response

import (
	"encoding/json"
	"net/http"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(resp)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, message any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: false,
		Error:   message,
	}

	json.NewEncoder(w).Encode(resp)
}

// statusByKind maps domain error kinds to HTTP status codes.
var statusByKind = map[domain.ErrorKind]int{
	domain.KindUnauthorized:        http.StatusUnauthorized,
	domain.KindNotFound:            http.StatusNotFound,
	domain.KindInvalidInput:        http.StatusBadRequest,
	domain.KindQuotaExceeded:       http.StatusTooManyRequests,
	domain.KindPaymentRequired:     http.StatusPaymentRequired,
	domain.KindUpstreamUnavailable: http.StatusBadGateway,
	domain.KindStoreUnavailable:    http.StatusServiceUnavailable,
	domain.KindRenewalNotEligible:  http.StatusConflict,
}

// FromError sends an error response with the status code implied by the
// error's kind. Errors without a kind become a 500. Errors carrying details,
// such as quota usage or the next eligible renewal time, are sent as an
// object so clients can act on them.
func FromError(w http.ResponseWriter, err error) {
	status, ok := statusByKind[domain.KindOf(err)]
	if !ok {
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if details := domain.DetailsOf(err); details != nil {
		Error(w, status, map[string]any{
			"message": err.Error(),
			"details": details,
		})
		return
	}
	Error(w, status, err.Error())
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with data
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message any) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message any) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message any) {
	Error(w, http.StatusNotFound, message)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, message any) {
	Error(w, http.StatusInternalServerError, message)
}
