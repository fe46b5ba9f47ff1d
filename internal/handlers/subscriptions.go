package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/auth"
)

// SubscriptionHandler serves the subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
}

// Toggle handles POST /api/v1/subscribe/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.Subscriptions.Toggle(ctx, chi.URLParam(r, "channelId"), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	message := "Unsubscribed successfully"
	if result.Subscribed {
		message = "Subscribed successfully"
	}
	respondData(ctx, w, http.StatusOK, result, message)
}

// Subscribers handles GET /api/v1/subscribe/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Subscriptions.Subscribers(ctx, chi.URLParam(r, "channelId"), q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Subscribers fetched successfully", "No subscribers found")
}

// Summary handles GET /api/v1/subscribe/c/{channelId}/summary.
func (h SubscriptionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.Subscriptions.Summary(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, summary, "Subscriber summary fetched successfully")
}

// SubscribedChannels handles GET /api/v1/subscribe/u/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Subscriptions.SubscribedChannels(ctx, chi.URLParam(r, "subscriberId"), q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Subscribed channels fetched successfully", "No subscribed channels found")
}
