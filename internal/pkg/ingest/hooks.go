package ingest

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/prom"
)

// Hook is a side effect run after a transaction transitions to approved.
type Hook interface {
	Name() string
	Run(ctx context.Context, tx *models.Transaction) error
}

type hookFunc struct {
	name string
	fn   func(ctx context.Context, tx *models.Transaction) error
}

func (h hookFunc) Name() string { return h.name }

func (h hookFunc) Run(ctx context.Context, tx *models.Transaction) error {
	return h.fn(ctx, tx)
}

// NewHook wraps a function as a named Hook.
func NewHook(name string, fn func(ctx context.Context, tx *models.Transaction) error) Hook {
	return hookFunc{name: name, fn: fn}
}

// runHook executes one hook inside its own error boundary. A failing or
// panicking hook never affects the stored transaction or later hooks.
func runHook(ctx context.Context, h Hook, tx *models.Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", h.Name(), r)
		}
	}()
	return h.Run(ctx, tx)
}

// runHooks runs hooks in order and returns the names of those that failed.
func (p *Pipeline) runHooks(ctx context.Context, tx *models.Transaction, clientIP string) []string {
	var failed []string
	for _, h := range p.hooks {
		if err := runHook(ctx, h, tx); err != nil {
			log.Errorf("[Webhook] Hook %s failed for transaction %s: %v", h.Name(), tx.ExternalID, err)
			prom.HookFailures.WithLabelValues(h.Name()).Inc()
			p.audit.ProcessingError(ctx, tx.Source, clientIP, "hook:"+h.Name(), err, map[string]interface{}{
				"external_id":    tx.ExternalID,
				"customer_email": tx.CustomerEmail,
			})
			failed = append(failed, h.Name())
		}
	}
	return failed
}
