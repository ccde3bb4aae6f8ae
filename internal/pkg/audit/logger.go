package audit

import (
	"context"
	"encoding/json"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

// Store persists security events. Satisfied by repository.SecurityEventRepository.
type Store interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
}

// Logger records authentication failures and processing errors as structured,
// PII-redacted events. It never returns an error to its caller: an audit
// write failure must not change the outcome of the request being audited.
type Logger struct {
	store Store
	sink  *logrus.Logger
}

// NewLogger creates an audit logger writing JSON lines to stdout and rows to store.
// store may be nil (log-only).
func NewLogger(store Store) *Logger {
	sink := logrus.New()
	sink.SetOutput(os.Stdout)
	sink.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
	})
	return &Logger{store: store, sink: sink}
}

// WithSink replaces the logrus sink (tests capture output this way).
func (l *Logger) WithSink(sink *logrus.Logger) *Logger {
	l.sink = sink
	return l
}

// AuthFailure records a rejected webhook signature.
func (l *Logger) AuthFailure(ctx context.Context, source, clientIP, reason string) {
	l.record(ctx, logrus.WarnLevel, &models.SecurityEvent{
		EventType: models.SecurityEventAuthFailure,
		Source:    source,
		ClientIP:  clientIP,
		Message:   "webhook signature rejected",
	}, map[string]interface{}{"reason": reason})
}

// SignatureUnconfigured records a request accepted without verification
// because no secret is configured for its source.
func (l *Logger) SignatureUnconfigured(ctx context.Context, source, clientIP string) {
	l.record(ctx, logrus.WarnLevel, &models.SecurityEvent{
		EventType: models.SecurityEventSignatureUnconfigured,
		Source:    source,
		ClientIP:  clientIP,
		Message:   "webhook accepted without signature: no secret configured",
	}, nil)
}

// ProcessingError records a failure while handling an accepted request.
func (l *Logger) ProcessingError(ctx context.Context, source, clientIP, stage string, err error, details map[string]interface{}) {
	fields := map[string]interface{}{"stage": stage}
	if err != nil {
		fields["error"] = err.Error()
	}
	for k, v := range details {
		fields[k] = v
	}
	l.record(ctx, logrus.ErrorLevel, &models.SecurityEvent{
		EventType: models.SecurityEventProcessingError,
		Source:    source,
		ClientIP:  clientIP,
		Message:   "webhook processing failed",
	}, fields)
}

func (l *Logger) record(ctx context.Context, level logrus.Level, event *models.SecurityEvent, details map[string]interface{}) {
	redacted := RedactFields(details)

	if l.sink != nil {
		l.sink.WithFields(logrus.Fields{
			"audit":      true,
			"event_type": event.EventType,
			"source":     event.Source,
			"client_ip":  event.ClientIP,
			"details":    redacted,
		}).Log(level, event.Message)
	}

	if l.store == nil {
		return
	}
	if len(redacted) > 0 {
		if raw, err := json.Marshal(redacted); err == nil {
			event.Details = datatypes.JSON(raw)
		}
	}
	if err := l.store.Create(ctx, event); err != nil {
		log.Errorf("[Audit] Failed to persist security event %s: %v", event.EventType, err)
	}
}
