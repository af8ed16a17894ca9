package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachePaymentStatus(t *testing.T) {
	mr, rdb := newRedis(t)
	c := &Cache{RDB: rdb}
	ctx := context.Background()

	_, ok := c.PaymentStatus(ctx, "ORDER-1")
	assert.False(t, ok)

	v := booking.StatusView{
		Status: payments.StatusPending, OrderID: "ORDER-1", Amount: 1000,
		BookedSeats: []string{"A1"}, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	c.SetPaymentStatus(ctx, v)

	got, ok := c.PaymentStatus(ctx, "ORDER-1")
	require.True(t, ok)
	assert.Equal(t, v, got)
	assert.Equal(t, TTLStatusCache, mr.TTL("payment_status:ORDER-1"))

	c.ForgetPaymentStatus(ctx, "ORDER-1")
	_, ok = c.PaymentStatus(ctx, "ORDER-1")
	assert.False(t, ok)
}

func TestCacheBookedSeats(t *testing.T) {
	mr, rdb := newRedis(t)
	c := &Cache{RDB: rdb}
	ctx := context.Background()

	c.SetBookedSeats(ctx, "sch-1", []string{"A1", "A2"})
	got, ok := c.BookedSeats(ctx, "sch-1")
	require.True(t, ok)
	assert.Equal(t, []string{"A1", "A2"}, got)

	c.ForgetBookedSeats(ctx, "sch-1")
	assert.False(t, mr.Exists("booked_seats:sch-1"))
}

func TestCacheDegradesToMissWhenRedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	c := &Cache{RDB: rdb}
	mr.Close()

	c.SetBookedSeats(context.Background(), "sch-1", []string{"A1"})
	_, ok := c.BookedSeats(context.Background(), "sch-1")
	assert.False(t, ok)
}

func TestClaim(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	first, err := Claim(ctx, rdb, "dedup:audit:e1", time.Minute)
	require.NoError(t, err)
	second, err := Claim(ctx, rdb, "dedup:audit:e1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	require.NoError(t, Release(ctx, rdb, "dedup:audit:e1"))
	again, err := Claim(ctx, rdb, "dedup:audit:e1", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}
