package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/application"
	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/domain"
)

type Handler struct {
	log          *slog.Logger
	service      *application.Service
	initialStock int64
	tracer       trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, initialStock int64) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		initialStock: initialStock,
		tracer:       otel.Tracer("inventory-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging(h.log))
	r.Get("/health", h.health)
	r.Get("/stock", h.stock)
	r.Post("/purchase/safe", h.purchaseSafe)
	r.Post("/purchase/unsafe", h.purchaseUnsafe)
	r.Post("/reset", h.reset)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	// No store round trip; the process only serves after the startup probe.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetStock")
	defer span.End()

	stock, err := h.service.Stock(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"stock": stock})
}

func (h *Handler) purchaseSafe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PurchaseSafe")
	defer span.End()

	outcome, err := h.service.PurchaseSafe(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) purchaseUnsafe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PurchaseUnsafe")
	defer span.End()

	outcome, err := h.service.PurchaseUnsafe(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResetStock")
	defer span.End()

	value := h.initialStock
	if raw := r.URL.Query().Get("value"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must be a non-negative integer"})
			return
		}
		value = parsed
	}

	if err := h.service.Reset(ctx, value); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"stock": value})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		h.log.Error("store unavailable", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "counter store unavailable"})
		return
	}
	h.log.Error("request failed", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
