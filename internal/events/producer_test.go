package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestNewProducer_NoBrokersIsNoop(t *testing.T) {
	t.Parallel()

	p := NewProducer(nil, "user_events")
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.PublishUserEvent(context.Background(), UserEvent{Type: TypeUserDeleted}))
	assert.NoError(t, p.Close())
}

func TestProducer_PublishUserEvent(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "user_events"}

	err := p.PublishUserEvent(context.Background(), UserEvent{
		Type:   TypeUserRegistered,
		UserID: "u-1",
		Login:  "alice",
		Role:   "user",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, []byte("u-1"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeUserRegistered, string(msg.Headers[0].Value))

	var ev UserEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "alice", ev.Login)
	assert.False(t, ev.OccurredAt.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishUserEvent_WriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: boom}, topic: "user_events"}

	err := p.PublishUserEvent(context.Background(), UserEvent{Type: TypeUserDeleted, UserID: "u-1"})
	assert.ErrorIs(t, err, boom)
}
