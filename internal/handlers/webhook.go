package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/orders"
)

// WebhookHandler reconciles inbound SigniFlow notifications with orders.
// Fire-and-forget from the sender's perspective: the response is always 200
// with a trivial success body, whatever happens internally. No retry, no
// dead-letter; an unmatched notification is acknowledged and dropped.
type WebhookHandler struct {
	store orders.Store
}

func NewWebhookHandler(store orders.Store) *WebhookHandler {
	return &WebhookHandler{store: store}
}

func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	// Ack no matter what; SigniFlow does not get our internal failures.
	defer ackSuccess(w)

	var notification models.WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		zap.L().Warn("webhook body not decodable", zap.Error(err))
		return
	}

	docID := models.RawString(notification.DocIDField)
	status := notification.StatusField
	logger := zap.L().With(
		zap.String("doc_id", docID),
		zap.String("status", status),
	)
	logger.Info("signiflow webhook received",
		zap.String("workflow_id", models.RawString(notification.WorkflowIDField)),
	)

	if docID == "" {
		logger.Warn("webhook without document id, ignoring")
		return
	}

	order, err := h.store.FindByDocID(r.Context(), docID)
	if err != nil {
		logger.Error("order lookup failed", zap.Error(err))
		return
	}
	if order == nil {
		logger.Info("no order matches document id, ignoring")
		return
	}

	// Deliveries can arrive out of order; a terminal status never regresses
	// on a stale duplicate.
	if order.SigningStatus.Terminal() {
		logger.Info("order already terminal, ignoring notification",
			zap.Int64("order_id", order.ID),
			zap.String("signing_status", string(order.SigningStatus)),
		)
		return
	}

	next, note, ok := mapNotificationStatus(status)
	if !ok {
		logger.Info("unrecognized notification status, ignoring", zap.Int64("order_id", order.ID))
		return
	}

	if err := h.store.SetSigningStatus(r.Context(), order.ID, next); err != nil {
		logger.Error("failed to update signing status", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	if err := h.store.AddNote(r.Context(), order.ID, note); err != nil {
		logger.Error("failed to record note", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	logger.Info("order reconciled",
		zap.Int64("order_id", order.ID),
		zap.String("signing_status", string(next)),
	)
}

// mapNotificationStatus folds the remote status synonyms onto the signing
// lifecycle.
func mapNotificationStatus(status string) (models.SigningStatus, string, bool) {
	switch status {
	case "Completed", "Signed":
		return models.SigningCompleted, "Signiflow: Document signed successfully.", true
	case "Rejected", "Declined":
		return models.SigningRejected, "Signiflow: Document was rejected/declined.", true
	default:
		return "", "", false
	}
}

func ackSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
