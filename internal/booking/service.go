// Package booking coordinates the payment ledger and seat inventory: it
// starts hosted checkouts and settles them from gateway notifications.
package booking

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/payhere"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/ariefcatur/go-seat-reservations/internal/seats"
)

type Ledger interface {
	Create(ctx context.Context, p *payments.Payment) error
	Transition(ctx context.Context, orderID string, to payments.Status, gatewayPaymentID string, raw json.RawMessage) (payments.Payment, bool, error)
	GetByOrderID(ctx context.Context, orderID string) (payments.Payment, error)
}

type Inventory interface {
	Schedule(ctx context.Context, scheduleID string) (seats.Schedule, error)
	BookedSeats(ctx context.Context, scheduleID string) ([]string, error)
	CheckAvailability(ctx context.Context, scheduleID string, seatIDs []string) (seats.Availability, error)
	Commit(ctx context.Context, scheduleID string, seatIDs []string) ([]string, error)
}

// Store gives access to both resources. Atomically runs fn so that either
// all of its writes are visible or none are.
type Store interface {
	Ledger() Ledger
	Inventory() Inventory
	Atomically(ctx context.Context, fn func(Ledger, Inventory) error) error
}

type Gateway interface {
	Verify(n payhere.Notification) error
	CheckoutURL(c payhere.Checkout) (string, error)
}

type Events interface {
	Emit(ctx context.Context, eventType, orderID string, payload any)
}

// StatusView is what GET /payments/status returns and what the cache stores.
type StatusView struct {
	Status      payments.Status `json:"status"`
	OrderID     string          `json:"orderId"`
	Amount      float64         `json:"amount"`
	BookedSeats []string        `json:"bookedSeats"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Cache interface {
	PaymentStatus(ctx context.Context, orderID string) (StatusView, bool)
	SetPaymentStatus(ctx context.Context, v StatusView)
	ForgetPaymentStatus(ctx context.Context, orderID string)
	BookedSeats(ctx context.Context, scheduleID string) ([]string, bool)
	SetBookedSeats(ctx context.Context, scheduleID string, seats []string)
	ForgetBookedSeats(ctx context.Context, scheduleID string)
}

type Service struct {
	store      Store
	gw         Gateway
	cache      Cache
	events     Events
	log        *slog.Logger
	newOrderID func() (string, error)
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithEvents(e Events) Option { return func(s *Service) { s.events = e } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithOrderIDs replaces the order id generator.
func WithOrderIDs(gen func() (string, error)) Option { return func(s *Service) { s.newOrderID = gen } }

func New(store Store, gw Gateway, opts ...Option) *Service {
	s := &Service{
		store:      store,
		gw:         gw,
		cache:      nopCache{},
		events:     nopEvents{},
		log:        slog.Default(),
		newOrderID: NewOrderID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type nopCache struct{}

func (nopCache) PaymentStatus(context.Context, string) (StatusView, bool) { return StatusView{}, false }
func (nopCache) SetPaymentStatus(context.Context, StatusView)             {}
func (nopCache) ForgetPaymentStatus(context.Context, string)              {}
func (nopCache) BookedSeats(context.Context, string) ([]string, bool)     { return nil, false }
func (nopCache) SetBookedSeats(context.Context, string, []string)         {}
func (nopCache) ForgetBookedSeats(context.Context, string)                {}

type nopEvents struct{}

func (nopEvents) Emit(context.Context, string, string, any) {}
