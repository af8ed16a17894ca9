package booking

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
)

// Status is a read-through lookup of a payment for polling clients.
// Pending payments are always read from the ledger.
func (s *Service) Status(ctx context.Context, orderID string) (StatusView, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return StatusView{}, apperr.Validation("orderId is required")
	}
	if v, ok := s.cache.PaymentStatus(ctx, orderID); ok {
		return v, nil
	}
	p, err := s.store.Ledger().GetByOrderID(ctx, orderID)
	if err != nil {
		return StatusView{}, err
	}
	v := StatusView{
		Status:      p.Status,
		OrderID:     p.OrderID,
		Amount:      p.Amount(),
		BookedSeats: p.SeatIDs,
		CreatedAt:   p.CreatedAt,
	}
	// terminal statuses never change; pending ones may settle at any moment
	if p.Status.Terminal() {
		s.cache.SetPaymentStatus(ctx, v)
	}
	return v, nil
}
