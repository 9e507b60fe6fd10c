package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/service"
)

// Task is one order-lifecycle trigger event. The same order commonly arrives
// several times (payment completed, processing, completed); the service's
// idempotency guard absorbs the duplicates.
type Task struct {
	OrderID int64
	Event   string
}

// Pool drains trigger events and re-invokes the orchestrator for each. This
// is the external scheduler layer: the orchestrator itself never retries.
type Pool struct {
	jobs    chan Task
	workers int
	svc     *service.SigningService
}

func NewPool(svc *service.SigningService, workers int) *Pool {
	if workers <= 0 {
		workers = 3
	}
	return &Pool{
		jobs:    make(chan Task, 1024),
		workers: workers,
		svc:     svc,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx, i)
	}
}

// Enqueue queues a trigger event; reports false when the queue is full.
func (p *Pool) Enqueue(task Task) bool {
	select {
	case p.jobs <- task:
		return true
	default:
		zap.L().Error("trigger queue full, dropping event",
			zap.Int64("order_id", task.OrderID),
			zap.String("event", task.Event),
		)
		return false
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	zap.L().Info("trigger worker started", zap.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("trigger worker stopped", zap.Int("worker", id))
			return

		case task := <-p.jobs:
			// Login + optional document fetch + submission, bounded.
			taskCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			outcome, err := p.svc.OnOrderReady(taskCtx, task.OrderID)
			cancel()

			if err != nil {
				zap.L().Error("trigger processing failed",
					zap.Int64("order_id", task.OrderID),
					zap.String("event", task.Event),
					zap.Error(err),
				)
				continue
			}
			zap.L().Info("trigger processed",
				zap.Int64("order_id", task.OrderID),
				zap.String("event", task.Event),
				zap.String("result", outcome.Result),
			)
		}
	}
}
