package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ DB postgres.DBTX }

const columns = `order_id, schedule_id, amount_cents, currency, passenger_name, passenger_email,
	passenger_phone, seat_ids, status, gateway_payment_id, gateway_response, created_at, updated_at`

// Create inserts a pending payment. The order id is the primary key, so a
// collision surfaces as DuplicateOrder instead of overwriting.
func (r *Repo) Create(ctx context.Context, p *Payment) error {
	if p.Status == "" {
		p.Status = StatusPending
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO payments(order_id, schedule_id, amount_cents, currency, passenger_name,
		                     passenger_email, passenger_phone, seat_ids, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING created_at, updated_at`,
		p.OrderID, p.ScheduleID, p.AmountCents, p.Currency, p.Passenger.Name,
		p.Passenger.Email, p.Passenger.Phone, p.SeatIDs, string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.DuplicateOrder(p.OrderID)
	}
	if err != nil {
		return fmt.Errorf("insert payment %s: %w", p.OrderID, err)
	}
	return nil
}

// Transition is a compare-and-set on status = 'pending'. applied reports
// whether this call changed the row; when the stored status is terminal the
// stored record is returned untouched.
func (r *Repo) Transition(ctx context.Context, orderID string, to Status, gatewayPaymentID string, raw json.RawMessage) (p Payment, applied bool, err error) {
	if !to.Valid() {
		return Payment{}, false, apperr.Validation(fmt.Sprintf("unknown payment status %q", to))
	}
	var rawArg any
	if len(raw) > 0 {
		rawArg = string(raw)
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE payments
		SET status = $2,
		    gateway_payment_id = CASE WHEN $3::text <> '' THEN $3::text ELSE gateway_payment_id END,
		    gateway_response = COALESCE($4::jsonb, gateway_response),
		    updated_at = now()
		WHERE order_id = $1 AND status = 'pending'
		RETURNING `+columns,
		orderID, string(to), gatewayPaymentID, rawArg,
	)
	p, err = scanPayment(row)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, false, fmt.Errorf("transition payment %s: %w", orderID, err)
	}
	p, err = r.GetByOrderID(ctx, orderID)
	return p, false, err
}

func (r *Repo) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM payments WHERE order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, apperr.NotFound("payment", orderID)
	}
	if err != nil {
		return Payment{}, fmt.Errorf("get payment %s: %w", orderID, err)
	}
	return p, nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var (
		p      Payment
		status string
		resp   []byte
	)
	err := row.Scan(&p.OrderID, &p.ScheduleID, &p.AmountCents, &p.Currency, &p.Passenger.Name,
		&p.Passenger.Email, &p.Passenger.Phone, &p.SeatIDs, &status, &p.GatewayPaymentID, &resp,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payment{}, err
	}
	p.Status = Status(status)
	if len(resp) > 0 {
		p.GatewayResponse = json.RawMessage(resp)
	}
	return p, nil
}
