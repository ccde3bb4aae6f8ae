package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/prom"
)

// Auditor receives security-relevant events. Implementations redact PII.
type Auditor interface {
	AuthFailure(ctx context.Context, source, clientIP, reason string)
	SignatureUnconfigured(ctx context.Context, source, clientIP string)
	ProcessingError(ctx context.Context, source, clientIP, stage string, err error, details map[string]interface{})
}

// Archiver stores a copy of a recorded raw event outside the database.
type Archiver interface {
	Archive(ctx context.Context, event *models.IntegrationEvent) error
}

// Pipeline runs one webhook request from detection to side effects.
type Pipeline struct {
	verifier *Verifier
	events   repository.IntegrationEventRepository
	txs      repository.TransactionRepository
	audit    Auditor
	hooks    []Hook
	archiver Archiver
	now      func() time.Time
}

// NewPipeline creates a pipeline. Hooks run in the given order.
func NewPipeline(verifier *Verifier, events repository.IntegrationEventRepository, txs repository.TransactionRepository, auditor Auditor, hooks ...Hook) *Pipeline {
	return &Pipeline{
		verifier: verifier,
		events:   events,
		txs:      txs,
		audit:    auditor,
		hooks:    hooks,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for receipt times and synthetic ids.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// WithArchiver enables best-effort archiving of raw events.
func (p *Pipeline) WithArchiver(a Archiver) *Pipeline {
	p.archiver = a
	return p
}

// Process handles a single webhook request. It returns ErrInvalidSignature
// when authentication fails; any other error means processing failed after
// authentication and has already been audited.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	source := Detect(req.SourceParam, req.Headers, req.Body)

	outcome, err := p.process(ctx, source, req)

	label := "processed"
	switch {
	case errors.Is(err, ErrInvalidSignature):
		label = "unauthorized"
	case err != nil:
		label = "failed"
	case outcome.Ignored:
		label = "ignored"
	}
	prom.RecordWebhook(source, label, time.Since(start).Seconds())
	return outcome, err
}

func (p *Pipeline) process(ctx context.Context, source string, req Request) (*Outcome, error) {
	verification := p.verifier.Verify(source, req.Headers)
	if verification.Unconfigured {
		p.audit.SignatureUnconfigured(ctx, source, req.ClientIP)
	}
	if !verification.Valid {
		log.Warnf("[Webhook] Rejected %s request from %s: %s", source, req.ClientIP, verification.Reason)
		p.audit.AuthFailure(ctx, source, req.ClientIP, verification.Reason)
		return nil, ErrInvalidSignature
	}

	receivedAt := p.now().UTC()
	parsed, parseErr := Parse(source, req.Body, receivedAt)

	event := &models.IntegrationEvent{
		Source:     source,
		Payload:    string(req.Body),
		ClientIP:   req.ClientIP,
		ReceivedAt: receivedAt,
	}
	if parsed != nil {
		event.EventType = parsed.EventType
		if parsed.Transaction != nil {
			event.SourceID = parsed.Transaction.ExternalID
		}
	}
	if err := p.events.Create(ctx, event); err != nil {
		p.audit.ProcessingError(ctx, source, req.ClientIP, "record_event", err, nil)
		return nil, fmt.Errorf("record integration event: %w", err)
	}
	p.archive(ctx, event)

	outcome := &Outcome{Source: source}
	if parsed != nil {
		outcome.EventType = parsed.EventType
	}

	if parseErr != nil {
		if errors.Is(parseErr, ErrIgnoredEvent) {
			log.Infof("[Webhook] Ignoring %s event %s", source, outcome.EventType)
			outcome.Ignored = true
			return outcome, nil
		}
		p.audit.ProcessingError(ctx, source, req.ClientIP, "parse", parseErr, map[string]interface{}{
			"integration_event_id": event.ID,
		})
		return nil, parseErr
	}

	stored, err := p.txs.Upsert(ctx, parsed.Transaction)
	if err != nil {
		p.audit.ProcessingError(ctx, source, req.ClientIP, "store_transaction", err, map[string]interface{}{
			"external_id":    parsed.Transaction.ExternalID,
			"customer_email": parsed.Transaction.CustomerEmail,
		})
		return nil, fmt.Errorf("store transaction: %w", err)
	}

	outcome.Transaction = stored.Transaction
	outcome.Created = stored.Created
	outcome.StatusChanged = stored.StatusChanged

	if stored.StatusChanged && stored.Transaction.IsApproved() {
		p.runHooks(ctx, stored.Transaction, req.ClientIP)
	}

	log.Infof("[Webhook] Stored %s transaction %s (status=%s, created=%t, changed=%t)",
		source, stored.Transaction.ExternalID, stored.Transaction.Status, stored.Created, stored.StatusChanged)
	return outcome, nil
}

func (p *Pipeline) archive(ctx context.Context, event *models.IntegrationEvent) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.Archive(ctx, event); err != nil {
		log.Warnf("[Webhook] Failed to archive integration event %d: %v", event.ID, err)
	}
}
