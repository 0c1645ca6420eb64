package payments_http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the uniform {data, success, message} wrapper every endpoint
// responds with, success and failure alike.
type Envelope struct {
	Data    any    `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Ok(data any) Envelope {
	return Envelope{Data: data, Success: true, Message: ""}
}

func Fail(data any, message string) Envelope {
	return Envelope{Data: data, Success: false, Message: message}
}

func writeEnvelope(w http.ResponseWriter, logger *zap.Logger, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
