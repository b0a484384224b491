package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storemanager/internal/domain"
	"storemanager/internal/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, logger.NewNop())

	event := NewSaleEvent(SaleCreated, 42, []domain.SaleLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, SaleCreated, string(w.msgs[0].Headers[0].Value))

	var decoded SaleEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, event.Lines, decoded.Lines)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, logger.NewNop())

	err := p.Publish(context.Background(), NewSaleEvent(SaleDeleted, 1, nil))

	assert.ErrorContains(t, err, "broker unavailable")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewSaleEvent(SaleUpdated, 1, nil)))
	assert.NoError(t, p.Close())
}
