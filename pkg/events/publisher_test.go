package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishWritesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "ledger.events", nil)

	evt := NewEvent(GradeRecorded, map[string]string{"student_id": "s-1"})
	require.NoError(t, p.Publish(context.Background(), evt))

	assert.Equal(t, "ledger.events", ch.exchange)
	assert.Equal(t, GradeRecorded, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, evt.ID, ch.msg.MessageId)

	var decoded Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, GradeRecorded, decoded.Type)
	assert.Equal(t, map[string]interface{}{"student_id": "s-1"}, decoded.Payload)
}

func TestPublishPropagatesBrokerError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newAMQPPublisher(ch, "ledger.events", nil)

	err := p.Publish(context.Background(), NewEvent(EnrollmentCreated, nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(AnnouncementCreated, nil)))
	assert.NoError(t, p.Close())
}
