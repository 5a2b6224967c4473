package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// Audit event types, prefixed with the configured topic prefix on publish.
const (
	EventAdminLoggedIn   = "admin.logged_in"
	EventAdminLoggedOut  = "admin.logged_out"
	EventUserPromoted    = "user.promoted"
	EventResourceMutated = "resource.mutated"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ActorID   string           `json:"actor_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, actorID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	topic := p.producer.TopicName(eventType)
	bytes, err := json.Marshal(eventEnvelope{
		EventID:   eventID,
		EventType: topic,
		ActorID:   actorID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(actorID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAdminLoggedIn publishes admin.logged_in events.
func (p *EventPublisher) PublishAdminLoggedIn(ctx context.Context, event domain.AdminLoggedInEvent) error {
	payload := struct {
		AdminID    string    `json:"admin_id"`
		Email      string    `json:"email"`
		Role       string    `json:"role"`
		LoggedInAt time.Time `json:"logged_in_at"`
	}{
		AdminID:    event.AdminID,
		Email:      event.Email,
		Role:       string(event.Role),
		LoggedInAt: event.LoggedInAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventAdminLoggedIn, event.AdminID, event.LoggedInAt, payload)
}

// PublishAdminLoggedOut publishes admin.logged_out events.
func (p *EventPublisher) PublishAdminLoggedOut(ctx context.Context, event domain.AdminLoggedOutEvent) error {
	payload := struct {
		AdminID     string    `json:"admin_id,omitempty"`
		Reason      string    `json:"reason"`
		LoggedOutAt time.Time `json:"logged_out_at"`
	}{
		AdminID:     event.AdminID,
		Reason:      event.Reason,
		LoggedOutAt: event.LoggedOutAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventAdminLoggedOut, event.AdminID, event.LoggedOutAt, payload)
}

// PublishUserPromoted publishes user.promoted events.
func (p *EventPublisher) PublishUserPromoted(ctx context.Context, event domain.UserPromotedEvent) error {
	permissions := make([]string, len(event.Permissions))
	for i, id := range event.Permissions {
		permissions[i] = string(id)
	}
	payload := struct {
		UserID      string    `json:"user_id"`
		Role        string    `json:"role"`
		Permissions []string  `json:"permissions"`
		PromotedBy  string    `json:"promoted_by"`
		PromotedAt  time.Time `json:"promoted_at"`
	}{
		UserID:      event.UserID,
		Role:        string(event.Role),
		Permissions: permissions,
		PromotedBy:  event.PromotedBy,
		PromotedAt:  event.PromotedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventUserPromoted, event.PromotedBy, event.PromotedAt, payload)
}

// PublishResourceMutated publishes resource.mutated events.
func (p *EventPublisher) PublishResourceMutated(ctx context.Context, event domain.ResourceMutatedEvent) error {
	payload := struct {
		Kind      string         `json:"kind"`
		ItemID    string         `json:"item_id"`
		Action    string         `json:"action,omitempty"`
		Patch     map[string]any `json:"patch"`
		MutatedAt time.Time      `json:"mutated_at"`
	}{
		Kind:      string(event.Kind),
		ItemID:    event.ItemID,
		Action:    event.Action,
		Patch:     event.Patch,
		MutatedAt: event.MutatedAt.UTC(),
	}
	return p.publish(ctx, event.EventID, EventResourceMutated, event.ActorID, event.MutatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
