package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MandalaChain/E-Certificate/internal/audit"
)

// AuditSink adapts the producer to the audit.Sink interface. Events are keyed
// by content hash so one certificate's trail lands on one partition.
type AuditSink struct {
	producer *Producer
}

func NewAuditSink(producer *Producer) *AuditSink {
	return &AuditSink{producer: producer}
}

func (s *AuditSink) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := event.ContentHash
	if key == "" {
		key = event.ID.String()
	}
	return s.producer.Publish(ctx, key, payload)
}
