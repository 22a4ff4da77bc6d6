package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Handlers exposes the platform's read API over REST.
type Handlers struct {
	strategies    *strategy.Service
	signals       *signal.Service
	subscriptions *subscription.Service
	log           *logger.Logger
}

// NewHandlers creates the REST handler set.
func NewHandlers(
	strategies *strategy.Service,
	signals *signal.Service,
	subscriptions *subscription.Service,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		strategies:    strategies,
		signals:       signals,
		subscriptions: subscriptions,
		log:           log.With("component", "api_handlers"),
	}
}

// HandleListStrategies serves GET /api/v1/strategies
func (h *Handlers) HandleListStrategies(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	strategies, err := h.strategies.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"strategies": strategies})
}

// HandleGetStrategy serves GET /api/v1/strategies/{id}
func (h *Handlers) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid strategy id"))
		return
	}

	st, err := h.strategies.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, st)
}

// HandleListSignals serves GET /api/v1/signals with optional symbol,
// kind, strategy_id, since and limit query filters.
func (h *Handlers) HandleListSignals(w http.ResponseWriter, r *http.Request) {
	q := signal.Query{
		Symbol: r.URL.Query().Get("symbol"),
		Kind:   signal.Kind(r.URL.Query().Get("kind")),
	}

	if raw := r.URL.Query().Get("strategy_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid strategy_id"))
			return
		}
		q.StrategyID = &id
	}

	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, errors.Wrap(errors.ErrInvalidInput, "since must be RFC3339"))
			return
		}
		q.Since = since
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, errors.Wrap(errors.ErrInvalidInput, "limit must be a positive integer"))
			return
		}
		q.Limit = limit
	}

	signals, err := h.signals.List(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"signals": signals})
}

// HandleListUserSubscriptions serves GET /api/v1/users/{id}/subscriptions
func (h *Handlers) HandleListUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid user id"))
		return
	}

	subs, err := h.subscriptions.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorw("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrAlreadyExists):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.log.Errorw("Request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
