package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, nil)
	p.Start()

	for i := 0; i < 3; i++ {
		require.True(t, p.Publish(context.Background(), events.TopicPaymentCompleted, []byte("ORDER-1"), []byte("{}")))
	}
	p.Close()
	p.Close()
	p.WaitClosed()

	assert.Len(t, w.msgs, 3)
	assert.Equal(t, events.TopicPaymentCompleted, w.msgs[0].Topic)
	assert.True(t, w.closed)
	assert.False(t, p.Publish(context.Background(), events.TopicPaymentCompleted, nil, nil))
}

func TestProducerPublishHonoursContext(t *testing.T) {
	p := newProducer(&fakeWriter{}, 0, nil) // never started, inbox unbuffered
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, p.Publish(ctx, "t", nil, nil))
}

type recordingPublisher struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafka.Header
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, key, value []byte, headers ...kafka.Header) bool {
	r.topic, r.key, r.value, r.headers = topic, key, value, headers
	return true
}

func TestEmitterWrapsEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	e := &Emitter{Producer: pub, Service: "seat-api"}
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	e.Emit(ctx, events.EventSeatsCommitted, "ORDER-1", events.SeatsCommittedPayload{
		OrderID: "ORDER-1", ScheduleID: "sch-1", SeatIDs: []string{"A1"},
	})

	assert.Equal(t, events.TopicSeatsCommitted, pub.topic)
	assert.Equal(t, "ORDER-1", string(pub.key))

	env, err := DecodeEnvelope(kafka.Message{Value: pub.value})
	require.NoError(t, err)
	assert.Equal(t, events.EventSeatsCommitted, env.EventType)
	assert.Equal(t, "req-42", env.TraceID)
	assert.Equal(t, "seat-api", env.Producer)

	p, err := UnwrapPayload[events.SeatsCommittedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, p.SeatIDs)
	assert.Equal(t, "x-event-type", pub.headers[0].Key)
}

func TestEmitterIgnoresUnknownEvent(t *testing.T) {
	pub := &recordingPublisher{}
	(&Emitter{Producer: pub}).Emit(context.Background(), "Nope", "ORDER-1", nil)
	assert.Empty(t, pub.topic)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope(kafka.Message{Value: []byte("nope")})
	assert.Error(t, err)

	b, _ := json.Marshal(events.Envelope{EventType: events.EventPaymentFailed})
	_, err = DecodeEnvelope(kafka.Message{Value: b})
	assert.Error(t, err)
}

type fakeReader struct {
	mu      sync.Mutex
	pending []kafka.Message
	commits []int64
	done    chan struct{}
	want    int
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		m := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.commits = append(f.commits, m.Offset)
	}
	if len(f.commits) == f.want {
		close(f.done)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumerDoesNotCommitPastFailure(t *testing.T) {
	r := &fakeReader{
		pending: []kafka.Message{
			{Topic: events.TopicPaymentCompleted, Partition: 0, Offset: 10},
			{Topic: events.TopicPaymentCompleted, Partition: 0, Offset: 11},
		},
		done: make(chan struct{}),
		want: 2,
	}
	c := newConsumer(r, 4, nil)
	c.retryMin, c.retryMax = time.Millisecond, 5*time.Millisecond

	var mu sync.Mutex
	calls := map[int64]int{}
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls[m.Offset]++
		if m.Offset == 10 && calls[10] < 3 {
			return errors.New("db down")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx, h) }()

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("messages were not committed")
	}
	cancel()
	require.NoError(t, <-errCh)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []int64{10, 11}, r.commits)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls[10])
	assert.Equal(t, 1, calls[11])
}
