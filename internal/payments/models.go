package payments

import (
	"encoding/json"
	"time"
)

type Passenger struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Payment is one purchase attempt. AmountCents is fixed at creation.
type Payment struct {
	OrderID          string
	ScheduleID       string
	AmountCents      int64
	Currency         string
	Passenger        Passenger
	SeatIDs          []string
	Status           Status
	GatewayPaymentID string
	GatewayResponse  json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Amount in major units, as shown to clients.
func (p Payment) Amount() float64 { return float64(p.AmountCents) / 100 }
