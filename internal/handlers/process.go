package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/logging"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/service"
	"github.com/rbc-easyrent/signiflow-order-service/internal/worker"
)

// Trigger events the commerce system fires. All three invoke the same
// entrypoint; duplicates are absorbed by the idempotency guard.
var knownEvents = map[string]bool{
	"payment_complete":  true,
	"status_processing": true,
	"status_completed":  true,
}

// Authenticator is the login slice of the SigniFlow client, for the manual
// credential test.
type Authenticator interface {
	Login(ctx context.Context) (models.TokenObject, error)
}

type TriggerRequest struct {
	OrderID int64  `json:"order_id"`
	Event   string `json:"event,omitempty"`
}

// ProcessHandler exposes the trigger surface: a queued event endpoint for
// the commerce hooks and a synchronous endpoint mirroring the legacy manual
// "test integration" action.
type ProcessHandler struct {
	svc  *service.SigningService
	pool *worker.Pool
	auth Authenticator
}

func NewProcessHandler(svc *service.SigningService, pool *worker.Pool, auth Authenticator) *ProcessHandler {
	return &ProcessHandler{svc: svc, pool: pool, auth: auth}
}

// HandleEvent accepts an order-lifecycle event and queues it. 202 on queue,
// 400 on a bad body or unknown event.
func (h *ProcessHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}
	if req.Event == "" || !knownEvents[req.Event] {
		http.Error(w, "event must be one of payment_complete, status_processing, status_completed", http.StatusBadRequest)
		return
	}

	if !h.pool.Enqueue(worker.Task{OrderID: req.OrderID, Event: req.Event}) {
		http.Error(w, "trigger queue full", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{"queued": true, "order_id": req.OrderID})
}

// ProcessOrder runs one submission attempt synchronously and returns the
// outcome. Manual/operator trigger.
func (h *ProcessHandler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	ctx = logging.WithOrderID(ctx, req.OrderID)

	outcome, err := h.svc.OnOrderReady(ctx, req.OrderID)
	if err != nil {
		zap.L().Error("processing error", append(logging.FieldsFromContext(ctx), zap.Error(err))...)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(outcome)
}

// TestLogin checks the configured credentials against SigniFlow. Mirrors the
// legacy settings-page login test.
func (h *ProcessHandler) TestLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if _, err := h.auth.Login(ctx); err != nil {
		zap.L().Error("test login failed", zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
}
