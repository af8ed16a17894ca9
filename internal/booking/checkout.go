package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/ariefcatur/go-seat-reservations/internal/metrics"
	"github.com/ariefcatur/go-seat-reservations/internal/payhere"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/ariefcatur/go-seat-reservations/internal/seats"
)

const orderIDAttempts = 3

type InitializeRequest struct {
	ScheduleID string
	SeatIDs    []string
	Passenger  payments.Passenger
}

type Checkout struct {
	OrderID        string
	RedirectTarget string
	AmountCents    int64
}

// BookingIntent travels through the gateway in custom_1.
type BookingIntent struct {
	ScheduleID string   `json:"scheduleId"`
	SeatIDs    []string `json:"seatIds"`
}

type Quote struct {
	PricePerSeatCents int64
	TotalCents        int64
	Currency          string
}

// Initialize validates the request against current inventory, records a
// pending payment and returns the signed gateway redirect. Seats are only
// committed once the gateway confirms payment.
func (s *Service) Initialize(ctx context.Context, req InitializeRequest) (Checkout, error) {
	out, err := s.initialize(ctx, req)
	metrics.IncCheckout(outcome(err))
	return out, err
}

func (s *Service) initialize(ctx context.Context, req InitializeRequest) (Checkout, error) {
	scheduleID := strings.TrimSpace(req.ScheduleID)
	if scheduleID == "" {
		return Checkout{}, apperr.Validation("scheduleId is required")
	}
	seatIDs, err := seats.Normalize(req.SeatIDs)
	if err != nil {
		return Checkout{}, err
	}
	passenger, err := normalizePassenger(req.Passenger)
	if err != nil {
		return Checkout{}, err
	}

	inv := s.store.Inventory()
	schedule, err := inv.Schedule(ctx, scheduleID)
	if err != nil {
		return Checkout{}, err
	}
	if c := seats.Conflicts(schedule.BookedSeats, seatIDs); len(c) > 0 {
		return Checkout{}, apperr.SeatConflict(c)
	}

	amount := int64(len(seatIDs)) * schedule.Trip.PriceCents
	intent, err := json.Marshal(BookingIntent{ScheduleID: scheduleID, SeatIDs: seatIDs})
	if err != nil {
		return Checkout{}, apperr.Internal("encode booking intent", err)
	}

	ledger := s.store.Ledger()
	var orderID string
	for attempt := 1; attempt <= orderIDAttempts; attempt++ {
		orderID, err = s.newOrderID()
		if err != nil {
			return Checkout{}, apperr.Internal("generate order id", err)
		}

		redirect, err := s.gw.CheckoutURL(payhere.Checkout{
			OrderID:     orderID,
			AmountCents: amount,
			Currency:    payhere.Currency,
			Items:       fmt.Sprintf("Bus Reservation - %s to %s", schedule.Trip.Origin, schedule.Trip.Destination),
			FirstName:   passenger.Name,
			Email:       passenger.Email,
			Phone:       passenger.Phone,
			Custom1:     string(intent),
		})
		if err != nil {
			return Checkout{}, apperr.Internal("build checkout url", err)
		}

		p := &payments.Payment{
			OrderID:     orderID,
			ScheduleID:  scheduleID,
			AmountCents: amount,
			Currency:    payhere.Currency,
			Passenger:   passenger,
			SeatIDs:     seatIDs,
			Status:      payments.StatusPending,
		}
		err = ledger.Create(ctx, p)
		if apperr.Is(err, apperr.KindDuplicateOrder) {
			s.log.Warn("order_id_collision", "order_id", orderID, "attempt", attempt)
			continue
		}
		if err != nil {
			return Checkout{}, err
		}

		s.events.Emit(ctx, events.EventPaymentInitialized, orderID, events.PaymentInitializedPayload{
			OrderID: orderID, ScheduleID: scheduleID, SeatIDs: seatIDs,
			AmountCents: amount, Currency: payhere.Currency,
		})
		s.log.Info("payment_initialized", "order_id", orderID, "schedule_id", scheduleID,
			"seats", len(seatIDs), "amount", payhere.FormatAmount(amount))
		return Checkout{OrderID: orderID, RedirectTarget: redirect, AmountCents: amount}, nil
	}
	return Checkout{}, apperr.DuplicateOrder(orderID)
}

func normalizePassenger(p payments.Passenger) (payments.Passenger, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Name == "" || p.Email == "" || p.Phone == "" {
		return p, apperr.Validation("passengerName, passengerEmail and passengerPhone are required")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return p, apperr.Validation("passengerEmail is not a valid address")
	}
	return p, nil
}

func (s *Service) CheckSeats(ctx context.Context, scheduleID string, seatIDs []string) (seats.Availability, error) {
	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" {
		return seats.Availability{}, apperr.Validation("scheduleId is required")
	}
	ids, err := seats.Normalize(seatIDs)
	if err != nil {
		return seats.Availability{}, err
	}
	return s.store.Inventory().CheckAvailability(ctx, scheduleID, ids)
}

func (s *Service) BookedSeats(ctx context.Context, scheduleID string) ([]string, error) {
	if booked, ok := s.cache.BookedSeats(ctx, scheduleID); ok {
		return booked, nil
	}
	booked, err := s.store.Inventory().BookedSeats(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	s.cache.SetBookedSeats(ctx, scheduleID, booked)
	return booked, nil
}

func (s *Service) CalculatePrice(ctx context.Context, scheduleID string, seatCount int) (Quote, error) {
	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" || seatCount <= 0 {
		return Quote{}, apperr.Validation("scheduleId and a positive seatCount are required")
	}
	schedule, err := s.store.Inventory().Schedule(ctx, scheduleID)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		PricePerSeatCents: schedule.Trip.PriceCents,
		TotalCents:        schedule.Trip.PriceCents * int64(seatCount),
		Currency:          payhere.Currency,
	}, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}
