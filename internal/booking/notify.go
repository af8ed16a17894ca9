package booking

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/ariefcatur/go-seat-reservations/internal/metrics"
	"github.com/ariefcatur/go-seat-reservations/internal/payhere"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
)

const (
	ReasonAmountMismatch       = "amount_mismatch"
	ReasonSeatConflict         = "seat_conflict"
	ReasonSuccessAfterTerminal = "success_after_terminal"
)

// NotificationResult reports what a gateway callback did to the ledger.
type NotificationResult struct {
	OrderID        string
	Status         payments.Status
	Applied        bool
	SeatsCommitted bool
	Reason         string
}

type CancelResult struct {
	OrderID string
	Status  payments.Status
	Applied bool
}

// StatusFor maps a gateway status code to a ledger status.
func StatusFor(code string) payments.Status {
	switch strings.TrimSpace(code) {
	case payhere.StatusSuccess:
		return payments.StatusCompleted
	case payhere.StatusPending:
		return payments.StatusPending
	default:
		return payments.StatusFailed
	}
}

// HandleNotification settles one gateway callback. Re-deliveries are safe:
// only the caller whose ledger transition applies commits seats.
func (s *Service) HandleNotification(ctx context.Context, n payhere.Notification) (NotificationResult, error) {
	res, err := s.handleNotification(ctx, n)
	switch {
	case err != nil:
		metrics.IncNotification(outcome(err))
	case res.Reason != "":
		metrics.IncNotification(res.Reason)
	case !res.Applied:
		metrics.IncNotification("duplicate")
	default:
		metrics.IncNotification(string(res.Status))
	}
	return res, err
}

func (s *Service) handleNotification(ctx context.Context, n payhere.Notification) (NotificationResult, error) {
	if missing := n.Missing(); len(missing) > 0 {
		return NotificationResult{}, apperr.Malformed("missing fields: " + strings.Join(missing, ", "))
	}
	if err := s.gw.Verify(n); err != nil {
		s.log.Warn("notify_signature_invalid", "order_id", n.OrderID, "merchant_id", n.MerchantID, "err", err)
		msg := "invalid signature"
		if errors.Is(err, payhere.ErrMerchantMismatch) {
			msg = "merchant id mismatch"
		}
		return NotificationResult{}, apperr.InvalidSignature(msg)
	}

	stored, err := s.store.Ledger().GetByOrderID(ctx, n.OrderID)
	if err != nil {
		return NotificationResult{}, err
	}

	res := NotificationResult{OrderID: n.OrderID, Status: StatusFor(n.StatusCode)}
	if res.Status == payments.StatusCompleted && !amountMatches(stored, n) {
		s.log.Warn("notify_amount_mismatch", "order_id", n.OrderID,
			"expected", payhere.FormatAmount(stored.AmountCents), "got", n.Amount, "currency", n.Currency)
		res.Status = payments.StatusFailed
		res.Reason = ReasonAmountMismatch
	}
	gatewayID := ""
	if res.Status == payments.StatusCompleted {
		gatewayID = n.PaymentID
	}

	var (
		p      payments.Payment
		booked []string
	)
	err = s.store.Atomically(ctx, func(l Ledger, inv Inventory) error {
		var err error
		p, res.Applied, err = l.Transition(ctx, n.OrderID, res.Status, gatewayID, n.RawJSON())
		if err != nil {
			return err
		}
		if !res.Applied || res.Status != payments.StatusCompleted {
			return nil
		}
		booked, err = inv.Commit(ctx, p.ScheduleID, p.SeatIDs)
		return err
	})
	if apperr.Is(err, apperr.KindSeatConflict) {
		metrics.IncSeatCommit("conflict")
		return s.failOnSeatConflict(ctx, stored, n, apperr.ConflictingSeats(err))
	}
	if err != nil {
		return NotificationResult{}, err
	}

	if !res.Applied {
		if res.Status == payments.StatusCompleted && p.Status != payments.StatusCompleted {
			s.log.Warn("notify_success_after_terminal", "order_id", p.OrderID, "stored_status", p.Status)
			res.Reason = ReasonSuccessAfterTerminal
		} else {
			s.log.Info("notify_duplicate", "order_id", p.OrderID, "stored_status", p.Status, "status_code", n.StatusCode)
		}
		res.Status = p.Status
		return res, nil
	}

	s.cache.ForgetPaymentStatus(ctx, p.OrderID)
	s.log.Info("payment_transitioned", "order_id", p.OrderID, "status", p.Status, "status_code", n.StatusCode)

	switch p.Status {
	case payments.StatusCompleted:
		res.SeatsCommitted = true
		metrics.IncSeatCommit("ok")
		s.cache.ForgetBookedSeats(ctx, p.ScheduleID)
		s.log.Info("seats_committed", "order_id", p.OrderID, "schedule_id", p.ScheduleID, "seats", p.SeatIDs)
		s.events.Emit(ctx, events.EventPaymentCompleted, p.OrderID, statusPayload(p, n.StatusCode, ""))
		s.events.Emit(ctx, events.EventSeatsCommitted, p.OrderID, events.SeatsCommittedPayload{
			OrderID: p.OrderID, ScheduleID: p.ScheduleID, SeatIDs: p.SeatIDs, BookedSeats: booked,
		})
	case payments.StatusFailed:
		s.events.Emit(ctx, events.EventPaymentFailed, p.OrderID, statusPayload(p, n.StatusCode, res.Reason))
	}
	return res, nil
}

// failOnSeatConflict runs after the settling transaction rolled back: the
// gateway took the money but the seats went to someone else.
func (s *Service) failOnSeatConflict(ctx context.Context, stored payments.Payment, n payhere.Notification, conflicting []string) (NotificationResult, error) {
	raw, err := json.Marshal(struct {
		Notification json.RawMessage `json:"notification"`
		Reason       string          `json:"reason"`
		Conflicting  []string        `json:"conflicting"`
	}{n.RawJSON(), ReasonSeatConflict, conflicting})
	if err != nil {
		return NotificationResult{}, apperr.Internal("encode conflict audit", err)
	}

	var (
		p       payments.Payment
		applied bool
	)
	err = s.store.Atomically(ctx, func(l Ledger, _ Inventory) error {
		var err error
		p, applied, err = l.Transition(ctx, n.OrderID, payments.StatusFailed, "", raw)
		return err
	})
	if err != nil {
		return NotificationResult{}, err
	}

	s.log.Error("paid_seat_conflict", "order_id", n.OrderID, "schedule_id", stored.ScheduleID,
		"conflicting", conflicting, "payment_id", n.PaymentID)
	s.cache.ForgetPaymentStatus(ctx, n.OrderID)
	s.events.Emit(ctx, events.EventSeatConflict, n.OrderID, events.SeatConflictPayload{
		OrderID: n.OrderID, ScheduleID: stored.ScheduleID, Conflicting: conflicting,
	})
	if applied {
		s.events.Emit(ctx, events.EventPaymentFailed, n.OrderID, statusPayload(p, n.StatusCode, ReasonSeatConflict))
	}
	return NotificationResult{OrderID: n.OrderID, Status: p.Status, Applied: applied, Reason: ReasonSeatConflict}, nil
}

// Cancel handles the customer abandoning checkout. Terminal payments are
// left alone and their status returned.
func (s *Service) Cancel(ctx context.Context, orderID string) (CancelResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return CancelResult{}, apperr.Validation("order_id is required")
	}
	p, applied, err := s.store.Ledger().Transition(ctx, orderID, payments.StatusCancelled, "", nil)
	if err != nil {
		return CancelResult{}, err
	}
	if applied {
		s.cache.ForgetPaymentStatus(ctx, orderID)
		s.log.Info("payment_cancelled", "order_id", orderID)
		s.events.Emit(ctx, events.EventPaymentCancelled, orderID, statusPayload(p, "", ""))
	}
	return CancelResult{OrderID: orderID, Status: p.Status, Applied: applied}, nil
}

func amountMatches(p payments.Payment, n payhere.Notification) bool {
	if !strings.EqualFold(strings.TrimSpace(n.Currency), p.Currency) {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(n.Amount), 64)
	if err != nil {
		return false
	}
	return int64(math.Round(f*100)) == p.AmountCents
}

func statusPayload(p payments.Payment, code, reason string) events.PaymentStatusPayload {
	return events.PaymentStatusPayload{
		OrderID:          p.OrderID,
		ScheduleID:       p.ScheduleID,
		Status:           string(p.Status),
		GatewayPaymentID: p.GatewayPaymentID,
		StatusCode:       code,
		Reason:           reason,
	}
}
