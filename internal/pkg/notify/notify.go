// Package notify publishes integration hub events to Kafka.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/segmentio/kafka-go"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/prom"
)

const (
	TypeApprovedSale = "transaction.approved"
	TypeSyncAlert    = "directory_sync.completed"

	defaultTopic = "integration-hub.events"
)

// Publisher sends notifications. The zero-config implementation is Noop.
type Publisher interface {
	ApprovedSale(ctx context.Context, tx *models.Transaction) error
	SyncAlert(ctx context.Context, alert *models.SyncAlert) error
	Close() error
}

// Message is the envelope written to the topic.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ApprovedSaleData is the payload of a transaction.approved message.
// Customer email is deliberately not included.
type ApprovedSaleData struct {
	ExternalID    string  `json:"external_id"`
	Source        string  `json:"source"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	ProductID     string  `json:"product_id,omitempty"`
	ProductName   string  `json:"product_name,omitempty"`
	AffiliateCode *string `json:"affiliate_code,omitempty"`
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON envelopes to a single topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher creates a synchronous producer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, topic: topic, now: time.Now}
}

// NewFromEnv returns a Kafka publisher when KAFKA_BROKERS is set, otherwise Noop.
func NewFromEnv() Publisher {
	brokers := env.GetEnvList("KAFKA_BROKERS", nil)
	if len(brokers) == 0 {
		log.Info("[Notify] KAFKA_BROKERS not set, notifications disabled")
		return Noop{}
	}
	topic := env.GetEnv("KAFKA_TOPIC", defaultTopic)
	log.Infof("[Notify] Publishing notifications to %s via %v", topic, brokers)
	return NewKafkaPublisher(brokers, topic)
}

// ApprovedSale publishes a transaction.approved message keyed by external id.
func (p *KafkaPublisher) ApprovedSale(ctx context.Context, tx *models.Transaction) error {
	return p.publish(ctx, tx.ExternalID, TypeApprovedSale, ApprovedSaleData{
		ExternalID:    tx.ExternalID,
		Source:        tx.Source,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		ProductID:     tx.ProductID,
		ProductName:   tx.ProductName,
		AffiliateCode: tx.AffiliateCode,
	})
}

// SyncAlert publishes the summary of one directory sync run keyed by run id.
func (p *KafkaPublisher) SyncAlert(ctx context.Context, alert *models.SyncAlert) error {
	return p.publish(ctx, alert.RunID, TypeSyncAlert, alert)
}

func (p *KafkaPublisher) publish(ctx context.Context, key, msgType string, data interface{}) error {
	value, err := json.Marshal(Message{Type: msgType, Timestamp: p.now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", msgType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msgType)},
		},
	})
	if err != nil {
		prom.KafkaMessagesPublished.WithLabelValues(p.topic, "error").Inc()
		return fmt.Errorf("publish %s message: %w", msgType, err)
	}
	prom.KafkaMessagesPublished.WithLabelValues(p.topic, "ok").Inc()
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop discards every notification.
type Noop struct{}

func (Noop) ApprovedSale(context.Context, *models.Transaction) error { return nil }
func (Noop) SyncAlert(context.Context, *models.SyncAlert) error     { return nil }
func (Noop) Close() error                                           { return nil }
