// Package worker consumes assessment events and maintains the
// flagged-transaction review list off the request path.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Worker subscribes to completed assessments. Fraudulent ones become
// pending rows on the review list and are re-published for any
// downstream alerting consumers.
type Worker struct {
	bus    domain.EventBus
	repo   domain.Repository
	logger *slog.Logger

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new review-list worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, logger *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		repo:   repo,
		logger: logger.With("component", "worker"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the assessment pipeline.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicAssessmentCompleted, w.handleCompleted)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", domain.TopicAssessmentCompleted, err)
	}
	w.subscriptions = append(w.subscriptions, sub)

	w.logger.Info("worker started", "topic", domain.TopicAssessmentCompleted)
	return nil
}

// Stop cancels all subscriptions.
func (w *Worker) Stop() {
	w.cancel()
	for _, sub := range w.subscriptions {
		_ = sub.Unsubscribe()
	}
	w.logger.Info("worker stopped")
}

// handleCompleted flags fraudulent assessments for review.
func (w *Worker) handleCompleted(ctx context.Context, msg *domain.Message) error {
	var a domain.Assessment
	if err := json.Unmarshal(msg.Payload, &a); err != nil {
		w.logger.Error("failed to decode assessment event",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	if !a.Response.IsFraud {
		return nil
	}

	amount, _ := a.Input.Amount.Float64()

	flagged := &domain.FlaggedTransaction{
		ID:               uuid.New().String(),
		TransactionID:    a.Response.TransactionID,
		Amount:           amount,
		PaymentMethod:    a.Input.PaymentMethod,
		Category:         a.Input.Category,
		UserEmail:        a.Analyst,
		FraudProbability: a.Response.FraudProbability,
		RiskLevel:        a.Response.RiskLevel,
		Status:           domain.StatusPending,
		FlaggedAt:        time.Now().UTC(),
		RiskFactors:      a.Response.RiskFactors,
	}

	if err := w.repo.SaveFlaggedTransaction(ctx, flagged); err != nil {
		w.logger.Error("failed to save flagged transaction",
			"transaction_id", flagged.TransactionID,
			"error", err,
		)
		return err
	}

	w.logger.Info("transaction flagged for review",
		"transaction_id", flagged.TransactionID,
		"risk_level", flagged.RiskLevel,
		"probability", flagged.FraudProbability,
	)

	payload, _ := json.Marshal(flagged)
	if err := w.bus.Publish(ctx, domain.TopicAssessmentFlagged, payload); err != nil {
		w.logger.Warn("failed to publish flagged event",
			"transaction_id", flagged.TransactionID,
			"error", err,
		)
	}

	return nil
}
