package middleware

import (
	"net/http"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Status int       `json:"status"`
	Error  errorBody `json:"error"`
}

// writeError renders the same failure envelope the handlers use.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Status: status, Error: errorBody{Kind: kind, Message: message}})
}
