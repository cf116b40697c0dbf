package event

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalog/pkg/correlationid"
)

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*MQPublisher)(nil)
)

// NoopPublisher drops every message. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Message) error {
	return nil
}

// MQPublisher encodes messages as JSON and produces them synchronously.
type MQPublisher struct {
	producer mq.Producer
}

func NewMQPublisher(producer mq.Producer) *MQPublisher {
	return &MQPublisher{producer: producer}
}

func (p *MQPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", msg.Topic, err)
	}

	produceMsg := mq.ProduceMsg{
		Topic:   msg.Topic,
		Headers: buildHeaders(ctx),
		Payload: payload,
	}
	if msg.Key != "" {
		key := msg.Key
		produceMsg.PartitionKey = &key
	}

	if err := p.producer.Produce(ctx, produceMsg); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}

	return nil
}

// buildHeaders injects the trace context and correlation id carried by ctx.
func buildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	if id, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = id
	}

	return headers
}
