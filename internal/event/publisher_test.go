package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/event"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalog/pkg/correlationid"
)

type recordingProducer struct {
	msgs []mq.ProduceMsg
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestMQPublisher(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "req-42")
	widget := model.Product{ID: "0f3c9a", Name: "Widget", Description: "A widget", Price: decimal.RequireFromString("9.99")}

	t.Run("Should produce product event keyed by id", func(t *testing.T) {
		producer := &recordingProducer{}
		pub := event.NewMQPublisher(producer)

		require.NoError(t, pub.Publish(ctx, event.ProductCreated(widget)))

		require.Len(t, producer.msgs, 1)
		msg := producer.msgs[0]
		assert.Equal(t, event.TopicProductCreated, msg.Topic)
		require.NotNil(t, msg.PartitionKey)
		assert.Equal(t, "0f3c9a", *msg.PartitionKey)
		assert.Equal(t, "req-42", msg.Headers[correlationid.Header])
		assert.JSONEq(t, `{"product_id":"0f3c9a","name":"Widget","description":"A widget","price":"9.99"}`, string(msg.Payload))
	})

	t.Run("Should produce purge event without key", func(t *testing.T) {
		producer := &recordingProducer{}
		pub := event.NewMQPublisher(producer)

		require.NoError(t, pub.Publish(ctx, event.ProductsPurged(3)))

		require.Len(t, producer.msgs, 1)
		assert.Equal(t, event.TopicProductsPurged, producer.msgs[0].Topic)
		assert.Nil(t, producer.msgs[0].PartitionKey)
		assert.JSONEq(t, `{"deleted_count":3}`, string(producer.msgs[0].Payload))
	})

	t.Run("Should return producer error", func(t *testing.T) {
		pub := event.NewMQPublisher(&recordingProducer{err: errors.New("broker down")})

		err := pub.Publish(ctx, event.ProductDeleted("0f3c9a"))
		assert.ErrorContains(t, err, "broker down")
	})
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, event.NoopPublisher{}.Publish(context.Background(), event.ProductDeleted("x")))
}
