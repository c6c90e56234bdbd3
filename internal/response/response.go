// Package response renders the JSON envelope shared by every API endpoint.
package response

import (
	"encoding/json"
	"net/http"

	apperrors "fest-backend/pkg/errors"
	"fest-backend/pkg/logger"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// ErrorBody is the machine-readable part of a failed response.
type ErrorBody struct {
	Type    apperrors.ErrorType    `json:"type"`
	Reason  string                 `json:"reason,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Envelope wraps every response body.
type Envelope struct {
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// JSON writes env with the given HTTP status.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Success writes a success envelope carrying data.
func Success(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Error renders err as an error envelope. Internal errors are logged with the
// request-scoped logger and their cause never reaches the client.
func Error(w http.ResponseWriter, r *http.Request, err error, fallback *logger.Logger) {
	appErr := apperrors.As(err)
	log := logger.FromContext(r.Context(), fallback)

	if appErr.Type == apperrors.ErrorTypeInternal {
		if log != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Error("Request failed")
		}
	} else if log != nil {
		log.WithField("reason", appErr.Reason).Debug("Request rejected")
	}

	JSON(w, appErr.StatusCode, Envelope{
		Status:  StatusError,
		Message: appErr.Message,
		Error: &ErrorBody{
			Type:    appErr.Type,
			Reason:  appErr.Reason,
			Details: appErr.Details,
		},
	})
}
