package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T) (events.Envelope, kafkago.Message) {
	t.Helper()
	env := events.Envelope{
		EventID:       "0190a6f2-5d2c-7c1e-9a8b-0123456789ab",
		EventType:     events.EventPaymentCompleted,
		EventVersion:  1,
		OccurredAt:    time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		Producer:      "seat-api",
		CorrelationID: "ORDER-1",
		Payload:       json.RawMessage(`{"order_id":"ORDER-1","status":"completed"}`),
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return env, kafkago.Message{Topic: events.TopicPaymentCompleted, Value: b}
}

func TestRepoRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	env, _ := envelope(t)

	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs(env.EventID, env.EventType, "ORDER-1", "seat-api", env.OccurredAt, string(env.Payload)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs(env.EventID, env.EventType, "ORDER-1", "seat-api", env.OccurredAt, string(env.Payload)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	r := &Repo{DB: mock}
	inserted, err := r.Record(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = r.Record(context.Background(), env)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeRecorder struct {
	calls int
	err   error
}

func (f *fakeRecorder) Record(context.Context, events.Envelope) (bool, error) {
	f.calls++
	return f.err == nil, f.err
}

func newService(t *testing.T, rec recorder) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Service{Repo: rec, Redis: rdb}, mr
}

func TestHandleEventDedups(t *testing.T) {
	rec := &fakeRecorder{}
	svc, mr := newService(t, rec)
	env, msg := envelope(t)

	require.NoError(t, svc.HandleEvent(context.Background(), msg))
	require.NoError(t, svc.HandleEvent(context.Background(), msg))

	assert.Equal(t, 1, rec.calls)
	assert.True(t, mr.Exists("dedup:audit:"+env.EventID))
}

func TestHandleEventReleasesClaimOnFailure(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	svc, mr := newService(t, rec)
	env, msg := envelope(t)

	assert.Error(t, svc.HandleEvent(context.Background(), msg))
	assert.False(t, mr.Exists("dedup:audit:"+env.EventID))

	rec.err = nil
	require.NoError(t, svc.HandleEvent(context.Background(), msg))
	assert.Equal(t, 2, rec.calls)
}

func TestHandleEventSkipsPoison(t *testing.T) {
	rec := &fakeRecorder{}
	svc, _ := newService(t, rec)

	assert.NoError(t, svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte(`{"payload":{}}`)}))
	assert.Zero(t, rec.calls)
}

func TestHandleEventWithoutRedis(t *testing.T) {
	rec := &fakeRecorder{}
	svc := &Service{Repo: rec}
	_, msg := envelope(t)

	require.NoError(t, svc.HandleEvent(context.Background(), msg))
	require.NoError(t, svc.HandleEvent(context.Background(), msg))
	assert.Equal(t, 2, rec.calls)
}
