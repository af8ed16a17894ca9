package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache for payment status and booked seats.
// Redis errors degrade to a miss; Postgres stays the source of truth.
type Cache struct {
	RDB redis.Cmdable
	Log *slog.Logger
}

var _ booking.Cache = (*Cache)(nil)

func (c *Cache) PaymentStatus(ctx context.Context, orderID string) (booking.StatusView, bool) {
	var v booking.StatusView
	return v, c.getJSON(ctx, fmt.Sprintf(KeyPaymentStatus, orderID), &v)
}

func (c *Cache) SetPaymentStatus(ctx context.Context, v booking.StatusView) {
	c.setJSON(ctx, fmt.Sprintf(KeyPaymentStatus, v.OrderID), v, TTLStatusCache)
}

func (c *Cache) ForgetPaymentStatus(ctx context.Context, orderID string) {
	c.del(ctx, fmt.Sprintf(KeyPaymentStatus, orderID))
}

func (c *Cache) BookedSeats(ctx context.Context, scheduleID string) ([]string, bool) {
	var seats []string
	return seats, c.getJSON(ctx, fmt.Sprintf(KeyBookedSeats, scheduleID), &seats)
}

func (c *Cache) SetBookedSeats(ctx context.Context, scheduleID string, seats []string) {
	c.setJSON(ctx, fmt.Sprintf(KeyBookedSeats, scheduleID), seats, TTLSeatsCache)
}

func (c *Cache) ForgetBookedSeats(ctx context.Context, scheduleID string) {
	c.del(ctx, fmt.Sprintf(KeyBookedSeats, scheduleID))
}

func (c *Cache) getJSON(ctx context.Context, key string, out any) bool {
	s, err := c.RDB.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger().Warn("cache_get_failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		c.logger().Warn("cache_decode_failed", "key", key, "err", err)
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.RDB.Set(ctx, key, b, ttl).Err(); err != nil {
		c.logger().Warn("cache_set_failed", "key", key, "err", err)
	}
}

func (c *Cache) del(ctx context.Context, key string) {
	if err := c.RDB.Del(ctx, key).Err(); err != nil {
		c.logger().Warn("cache_del_failed", "key", key, "err", err)
	}
}

func (c *Cache) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
