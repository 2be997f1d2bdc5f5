// Package worker consumes statement requests from the queue, builds the
// ledger and hands it to an exporter.
package worker

import (
	"context"
	"fmt"
	"time"

	"hoaledger/internal/amqp"
	"hoaledger/internal/core"
	"hoaledger/internal/log"
	"hoaledger/internal/statement"
)

// Exporter delivers a built statement somewhere a client can read it.
type Exporter interface {
	ExportStatement(ctx context.Context, clientID, unitID string, ledger *core.StatementLedger) error
}

// StatementWorker turns queued requests into exported statements. A nil
// exporter builds and logs only, useful for validating data loads.
type StatementWorker struct {
	builder      *statement.Builder
	exporter     Exporter
	buildTimeout time.Duration
	logger       *log.Logger
}

func NewStatementWorker(builder *statement.Builder, exporter Exporter, buildTimeout time.Duration, logger *log.Logger) *StatementWorker {
	if buildTimeout <= 0 {
		buildTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &StatementWorker{
		builder:      builder,
		exporter:     exporter,
		buildTimeout: buildTimeout,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// HandleStatementRequest processes a single queued request. Errors
// propagate to the consumer, which nacks and requeues.
func (w *StatementWorker) HandleStatementRequest(ctx context.Context, msg *amqp.StatementRequestMessage) error {
	req, err := w.toRequest(msg)
	if err != nil {
		// A request that cannot be parsed will not parse on redelivery
		// either; log and drop it rather than poisoning the queue.
		w.logger.ErrorContext(ctx, "Dropping unbuildable statement request",
			log.FieldRequestID, msg.RequestID,
			log.FieldClientID, msg.ClientID,
			log.FieldUnitID, msg.UnitID,
			log.FieldError, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.buildTimeout)
	defer cancel()

	started := time.Now()
	ledger, err := w.builder.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}

	w.logger.InfoContext(ctx, "Built statement",
		log.FieldRequestID, msg.RequestID,
		log.FieldClientID, msg.ClientID,
		log.FieldUnitID, msg.UnitID,
		log.FieldLineItems, len(ledger.LineItems),
		log.FieldBalance, int64(ledger.Summary.TotalBalance),
		log.FieldDuration, time.Since(started).Milliseconds())

	if w.exporter == nil {
		return nil
	}
	if err := w.exporter.ExportStatement(ctx, msg.ClientID, msg.UnitID, ledger); err != nil {
		return fmt.Errorf("export statement: %w", err)
	}
	return nil
}

func (w *StatementWorker) toRequest(msg *amqp.StatementRequestMessage) (statement.Request, error) {
	if err := msg.Validate(); err != nil {
		return statement.Request{}, err
	}

	from, err := core.ParseDate(msg.From)
	if err != nil {
		return statement.Request{}, fmt.Errorf("parse from date: %w", err)
	}
	to, err := core.ParseDate(msg.To)
	if err != nil {
		return statement.Request{}, fmt.Errorf("parse to date: %w", err)
	}

	req := statement.Request{
		ClientID: msg.ClientID,
		UnitID:   msg.UnitID,
		From:     from,
		To:       to,
	}
	if msg.AsOf != "" {
		asOf, err := core.ParseDate(msg.AsOf)
		if err != nil {
			return statement.Request{}, fmt.Errorf("parse as-of date: %w", err)
		}
		req.AsOf = asOf
	}
	return req, nil
}
