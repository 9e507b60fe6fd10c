package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/orders"
)

// Client is the SigniFlow surface the orchestrator needs.
type Client interface {
	Token(ctx context.Context) (models.TokenObject, error)
	Submit(ctx context.Context, req *models.FullWorkflowRequest) (*models.SigningResult, error)
}

// RequestBuilder assembles the submission payload for an order.
type RequestBuilder interface {
	Build(ctx context.Context, order *models.Order, cfg *config.Config, token models.TokenObject) (*models.FullWorkflowRequest, error)
}

// Outcome summarizes one trigger invocation for callers and logs.
type Outcome struct {
	OrderID    int64  `json:"order_id"`
	Result     string `json:"result"` // sent | skipped | held | rejected | error
	Detail     string `json:"detail,omitempty"`
	DocID      string `json:"doc_id,omitempty"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// SigningService is the orchestrator entrypoint: per triggering order event
// it authenticates, builds the payload and submits it, translating every
// failure into order notes and status side effects. Never panics the
// triggering event.
type SigningService struct {
	store   orders.Store
	client  Client
	builder RequestBuilder
	cfg     *config.Config
}

func NewSigningService(store orders.Store, client Client, builder RequestBuilder, cfg *config.Config) *SigningService {
	return &SigningService{
		store:   store,
		client:  client,
		builder: builder,
		cfg:     cfg,
	}
}

// OnOrderReady runs one submission attempt for the order. Safe to invoke
// repeatedly: an order already sent or completed is skipped without a second
// network submission. Flow failures land on the order (note + detail +
// status), not on the caller; only store failures surface as errors.
func (s *SigningService) OnOrderReady(ctx context.Context, orderID int64) (*Outcome, error) {
	logger := zap.L().With(zap.Int64("order_id", orderID))

	order, err := s.store.Get(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		logger.Warn("trigger for unknown order")
		return &Outcome{OrderID: orderID, Result: "skipped", Detail: "order not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	// Idempotency guard: duplicate trigger events are expected.
	if order.SigningStatus == models.SigningSent || order.SigningStatus == models.SigningCompleted {
		logger.Info("order already processed, skipping",
			zap.String("signing_status", string(order.SigningStatus)),
		)
		return &Outcome{OrderID: orderID, Result: "skipped", Detail: "already " + string(order.SigningStatus)}, nil
	}

	token, err := s.client.Token(ctx)
	if err != nil {
		logger.Error("authentication failed", zap.Error(err))
		return s.holdOrder(ctx, orderID, "Signiflow authentication failed.", noteAuthFailed, err)
	}

	req, err := s.builder.Build(ctx, order, s.cfg, token)
	if err != nil {
		return s.applyBuildFailure(ctx, logger, orderID, err)
	}

	result, err := s.client.Submit(ctx, req)
	if err != nil {
		return s.applySubmitFailure(ctx, logger, orderID, err)
	}

	return s.applySuccess(ctx, logger, order, result)
}

func (s *SigningService) applySuccess(ctx context.Context, logger *zap.Logger, order *models.Order, result *models.SigningResult) (*Outcome, error) {
	if err := s.store.SetSigningMeta(ctx, order.ID, result.DocID, result.WorkflowID); err != nil {
		return nil, err
	}
	if err := s.store.SetSigningStatus(ctx, order.ID, models.SigningSent); err != nil {
		return nil, err
	}
	if err := s.store.AddNote(ctx, order.ID, noteSent(result.DocID, result.WorkflowID, order.Email)); err != nil {
		return nil, err
	}

	if s.cfg.AutoOrderStatus != "" {
		if err := s.store.UpdateStatus(ctx, order.ID, s.cfg.AutoOrderStatus, "Signiflow workflow sent."); err != nil {
			return nil, err
		}
	}

	logger.Info("workflow sent",
		zap.String("doc_id", result.DocID),
		zap.String("workflow_id", result.WorkflowID),
	)
	return &Outcome{
		OrderID:    order.ID,
		Result:     "sent",
		DocID:      result.DocID,
		WorkflowID: result.WorkflowID,
	}, nil
}

// applyBuildFailure maps pre-submission failures: configuration puts the
// order on hold, validation and document problems only leave a note plus the
// persisted detail.
func (s *SigningService) applyBuildFailure(ctx context.Context, logger *zap.Logger, orderID int64, cause error) (*Outcome, error) {
	kind, _ := flowerrors.KindOf(cause)
	msg := flowerrors.MessageOf(cause)
	logger.Error("payload build failed", zap.String("kind", kind.String()), zap.Error(cause))

	switch kind {
	case flowerrors.KindConfiguration:
		return s.holdOrder(ctx, orderID, "Signiflow configuration missing.", noteConfigMissing, cause)
	case flowerrors.KindPdf:
		if err := s.noteAndRecord(ctx, orderID, "Signiflow: Failed to read PDF template(s). Please check file paths in settings.", msg); err != nil {
			return nil, err
		}
	default:
		if err := s.noteAndRecord(ctx, orderID, "Signiflow: "+msg, msg); err != nil {
			return nil, err
		}
	}
	return &Outcome{OrderID: orderID, Result: "rejected", Detail: msg}, nil
}

// applySubmitFailure marks the order errored and records the diagnostic.
// Invalid-token already purged the cache inside the client; invalid-document
// additionally gets the operator checklist.
func (s *SigningService) applySubmitFailure(ctx context.Context, logger *zap.Logger, orderID int64, cause error) (*Outcome, error) {
	msg := flowerrors.MessageOf(cause)
	logger.Error("submission failed", zap.Error(cause))

	if err := s.store.AddNote(ctx, orderID, "Signiflow Error: "+msg); err != nil {
		return nil, err
	}
	if err := s.store.SetLastError(ctx, orderID, msg); err != nil {
		return nil, err
	}
	if err := s.store.SetSigningStatus(ctx, orderID, models.SigningError); err != nil {
		return nil, err
	}

	if flowerrors.IsInvalidToken(cause) {
		if err := s.store.AddNote(ctx, orderID, noteTokenRetry); err != nil {
			return nil, err
		}
	} else if flowerrors.IsInvalidDocument(cause) {
		if err := s.store.AddNote(ctx, orderID, noteInvalidDocument(s.cfg.WorkflowID)); err != nil {
			return nil, err
		}
	}

	return &Outcome{OrderID: orderID, Result: "error", Detail: msg}, nil
}

// holdOrder parks the order on-hold with the reason; no retry is scheduled,
// re-invocation comes from the next trigger event or a manual run.
func (s *SigningService) holdOrder(ctx context.Context, orderID int64, statusNote, note string, cause error) (*Outcome, error) {
	if err := s.store.UpdateStatus(ctx, orderID, "on-hold", statusNote); err != nil {
		return nil, err
	}
	if err := s.noteAndRecord(ctx, orderID, note, flowerrors.MessageOf(cause)); err != nil {
		return nil, err
	}
	return &Outcome{OrderID: orderID, Result: "held", Detail: flowerrors.MessageOf(cause)}, nil
}

func (s *SigningService) noteAndRecord(ctx context.Context, orderID int64, note, detail string) error {
	if err := s.store.AddNote(ctx, orderID, note); err != nil {
		return err
	}
	return s.store.SetLastError(ctx, orderID, detail)
}
