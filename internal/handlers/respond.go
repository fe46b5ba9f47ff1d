package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

const maxJSONBody = 16 << 10

type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type errorBody struct {
	Kind    apperr.Kind       `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Status int       `json:"status"`
	Error  errorBody `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	respondJSON(ctx, w, status, envelope{Status: status, Data: data, Message: message})
}

// respondPage reports an empty listing with 404 while still carrying the page.
func respondPage[T any](ctx context.Context, w http.ResponseWriter, page models.Page[T], found, empty string) {
	if page.Empty() {
		respondData(ctx, w, http.StatusNotFound, page, empty)
		return
	}
	respondData(ctx, w, http.StatusOK, page, found)
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(apperr.KindOf(err))
	body := errorBody{Kind: apperr.KindOf(err), Message: apperr.Message(err)}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Fields = appErr.Fields
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "error", err)
	default:
		logger.Warn("request returned client error", "status", status, "kind", body.Kind, "error", err)
	}
	respondJSON(ctx, w, status, errorEnvelope{Status: status, Error: body})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidIdentifier, apperr.KindValidationFailed:
		return http.StatusBadRequest
	case apperr.KindNotFound, apperr.KindTargetNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidationFailed, "invalid request body", fmt.Errorf("decode body: %w", err))
	}
	return nil
}
