// Package api serves the school-data resources over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/service/endpoint"
	"ss12000-mock/internal/service/expand"
	"ss12000-mock/internal/service/subscription"
)

// Handler implements the /v1 operations.
type Handler struct {
	endpoints     *endpoint.Service
	subscriptions *subscription.Service
	logger        *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(endpoints *endpoint.Service, subscriptions *subscription.Service, logger *slog.Logger) *Handler {
	return &Handler{endpoints: endpoints, subscriptions: subscriptions, logger: logger.With("component", "api")}
}

// ListResponse is the body of a list operation.
type ListResponse struct {
	Data      []*expand.View `json:"data"`
	PageToken string         `json:"pageToken,omitempty"`
	Meta      ListMeta       `json:"meta"`
}

// ListMeta describes the returned window.
type ListMeta struct {
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// LookupRequest is the body of a lookup operation.
type LookupRequest struct {
	IDs []string `json:"ids"`
}

// LookupResponse is the body returned by a lookup operation.
type LookupResponse struct {
	Data []*expand.View `json:"data"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

// resourcePath returns the resource a request addresses: the {resource}
// route parameter, or the path fixed by the route.
func resourcePath(r *http.Request) string {
	if p, ok := r.Context().Value(resourceKey{}).(string); ok {
		return p
	}
	return chi.URLParam(r, "resource")
}

type resourceKey struct{}

// fixedResource pins the resource of the routes it wraps.
func fixedResource(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resourceKey{}, path)))
		})
	}
}

// List handles GET /v1/{resource}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := bindListParams(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.endpoints.List(r.Context(), resourcePath(r), p.listRequest(q))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Data:      page.Data,
		PageToken: page.PageToken,
		Meta:      ListMeta{TotalCount: page.TotalCount, Limit: page.Limit, Offset: page.Offset},
	})
}

// Get handles GET /v1/{resource}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := bindListParams(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.endpoints.Get(r.Context(), resourcePath(r), chi.URLParam(r, "id"), p.expandOptions())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Lookup handles POST /v1/{resource}/lookup.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	p, err := bindListParams(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body LookupRequest
	if err := decodeBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	views, err := h.endpoints.Lookup(r.Context(), resourcePath(r), body.IDs, p.expandOptions())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{Data: views})
}

// Statistics handles GET /v1/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	counts, err := h.endpoints.Statistics(r.Context(), r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// CreateSubscription handles POST /v1/subscriptions.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var body domain.CreateSubscriptionRequest
	if err := decodeBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	sub, err := h.subscriptions.Create(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// UpdateSubscription handles PATCH /v1/subscriptions/{id}.
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var body domain.UpdateSubscriptionRequest
	if err := decodeBody(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	sub, err := h.subscriptions.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /v1/subscriptions/{id}.
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxBodyBytes = 1 << 20

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}
