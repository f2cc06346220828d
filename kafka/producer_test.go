package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishCheckout_KeysByUser(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "checkout"}

	event := models.CheckoutEvent{
		Event:     models.EventCheckoutRequested,
		OrderID:   "order-1",
		UserID:    "user-1",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, p.PublishCheckout(context.Background(), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("user-1"), w.msgs[0].Key)

	var decoded models.CheckoutEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "order-1", decoded.OrderID)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
}

func TestPublishCheckout_WriteError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, topic: "checkout"}

	err := p.PublishCheckout(context.Background(), models.CheckoutEvent{UserID: "u"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(nil, "checkout")
	assert.Error(t, err)

	_, err = NewProducer([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"}, "checkout")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
