package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/apperr"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	Store   Pinger
	Timeout time.Duration
}

// Handle implements GET /api/v1/healthcheck.
func (HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondData(r.Context(), w, http.StatusOK, map[string]string{"message": "Everything is O.K"}, "Ok")
}

// Ready implements GET /api/v1/healthcheck/ready by pinging the store.
func (h HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Store == nil {
		respondError(ctx, w, apperr.New(apperr.KindStoreFailure, "store not configured"))
		return
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := h.Store.Ping(pingCtx); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindStoreFailure, "store unavailable", err))
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]string{"store": "ok"}, "Ready")
}
