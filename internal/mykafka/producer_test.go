package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	ev := NewEvent("order_placed", map[string]any{"orderId": "o-1", "finalAmount": 1050})
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrderEvents, "o-1", ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, TopicOrderEvents, w.msgs[0].Topic)
	assert.Equal(t, "o-1", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order_placed", got["type"])
	assert.Equal(t, "o-1", got["payload"].(map[string]any)["orderId"])
}

func TestPublishEvent_Errors(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.PublishEvent(context.Background(), TopicCartEvents, "k", NewEvent("cart_purged", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	p = &Producer{writer: &fakeWriter{}}
	err = p.PublishEvent(context.Background(), TopicCartEvents, "k", make(chan int))
	require.Error(t, err)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNewWriter_FlushesSingleMessages(t *testing.T) {
	w := newWriter([]string{"localhost:9092"})
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, 1, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
	assert.False(t, w.Async)
	assert.Equal(t, deliveryTimeout, w.WriteTimeout)
}
