package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// EventPublisher sends audit events keyed by payment id and security events
// keyed by tenant to their own topics.
type EventPublisher struct {
	kafka         *KafkaPublisher
	eventsTopic   string
	securityTopic string
	logger        *slog.Logger
}

func NewEventPublisher(kp *KafkaPublisher, eventsTopic, securityTopic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		kafka:         kp,
		eventsTopic:   eventsTopic,
		securityTopic: securityTopic,
		logger:        logger,
	}
}

func (p *EventPublisher) PublishPaymentEvents(ctx context.Context, events ...domain.PaymentEvent) error {
	msgs := make([]domain.Message, 0, len(events))
	for _, e := range events {
		v, err := json.Marshal(PaymentEventMessage{
			EventID:   e.ID,
			TenantID:  e.TenantID,
			PaymentID: e.PaymentID,
			OrderID:   e.OrderID,
			Provider:  e.Provider,
			Type:      e.Type,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
		if err != nil {
			p.logger.Warn("skip unencodable payment event", "event_id", e.ID, "type", e.Type, "error", err)
			continue
		}
		key := e.PaymentID
		if key == "" {
			key = e.TenantID
		}
		msgs = append(msgs, domain.Message{Key: []byte(key), Value: v})
	}
	if err := p.kafka.Publish(ctx, p.eventsTopic, msgs...); err != nil {
		return fmt.Errorf("publish payment events: %w", err)
	}
	return nil
}

func (p *EventPublisher) PublishSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	v, err := json.Marshal(SecurityEventMessage(event))
	if err != nil {
		return err
	}
	if err := p.kafka.Publish(ctx, p.securityTopic, domain.Message{Key: []byte(event.TenantID), Value: v}); err != nil {
		return fmt.Errorf("publish security event: %w", err)
	}
	return nil
}

// NopPublisher is used when kafka-service is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPaymentEvents(context.Context, ...domain.PaymentEvent) error { return nil }

func (NopPublisher) PublishSecurityEvent(context.Context, domain.SecurityEvent) error { return nil }
