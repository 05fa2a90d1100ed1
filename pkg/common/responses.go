package common

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "roadmaps-backend/pkg/errors"
)

// ErrorResponse is the JSON body returned for every failed request
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error:   true,
		Message: message,
		Code:    status,
	})
}

// RespondAppError maps an application error onto its HTTP status
func RespondAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusOf(err)
	message := "Internal server error"
	var appErr *apperrors.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}
	RespondError(w, status, message)
}

// ParseJSONBody parses a JSON request body with a size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
