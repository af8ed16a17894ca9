package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message is processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       messageReader
	workers int
	log     *slog.Logger

	retryMin time.Duration
	retryMax time.Duration
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *slog.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	}), workers, log)
}

func newConsumer(r messageReader, workers int, log *slog.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{r: r, workers: workers, log: log, retryMin: 500 * time.Millisecond, retryMax: 10 * time.Second}
}

// Start fetches messages and fans them out to workers. Every partition of a
// topic is owned by one worker, so its messages are handled and committed in
// offset order. A failing message is retried with backoff until it succeeds
// or ctx ends; later offsets of its partition wait behind it.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 256)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !c.handle(ctx, id, m, h) {
					return
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Warn("consumer_commit_failed", "worker", id, "topic", m.Topic, "err", err)
				}
			}
		}(i, queues[i])
	}
	defer wg.Wait()
	defer func() {
		for _, q := range queues {
			close(q)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			// quiet during shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case queues[c.owner(m)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle retries m until h succeeds. false means ctx ended first.
func (c *Consumer) handle(ctx context.Context, worker int, m kafka.Message, h Handler) bool {
	wait := c.retryMin
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		c.log.Error("consumer_handler_failed", "worker", worker, "topic", m.Topic,
			"partition", m.Partition, "offset", m.Offset, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait *= 2; wait > c.retryMax {
			wait = c.retryMax
		}
	}
}

func (c *Consumer) owner(m kafka.Message) int {
	h := uint32(m.Partition)
	for _, b := range []byte(m.Topic) {
		h = h*31 + uint32(b)
	}
	return int(h % uint32(c.workers))
}
