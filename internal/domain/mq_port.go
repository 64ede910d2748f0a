package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

// EventPublisher fans committed audit and security events out to other
// services. Publishing is best effort and never rolls back a transition.
type EventPublisher interface {
	PublishPaymentEvents(ctx context.Context, events ...PaymentEvent) error
	PublishSecurityEvent(ctx context.Context, event SecurityEvent) error
}
