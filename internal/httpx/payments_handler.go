package httpx

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/ariefcatur/go-seat-reservations/internal/payhere"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/go-chi/chi/v5"
)

type PaymentsHandler struct {
	Svc *booking.Service
	Log *slog.Logger
}

type initializeReq struct {
	ScheduleID     string   `json:"scheduleId"`
	SeatIDs        []string `json:"seatIds"`
	PassengerName  string   `json:"passengerName"`
	PassengerEmail string   `json:"passengerEmail"`
	PassengerPhone string   `json:"passengerPhone"`
}

type initializeResp struct {
	Message        string  `json:"message"`
	OrderID        string  `json:"orderId"`
	RedirectTarget string  `json:"redirectTarget"`
	Amount         float64 `json:"amount"`
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/initialize", h.initialize)
		r.Post("/notify", h.notify)
		r.Get("/cancel", h.cancel)
		r.Get("/status/{orderId}", h.status)
	})
}

func (h *PaymentsHandler) initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Svc.Initialize(ctx, booking.InitializeRequest{
		ScheduleID: req.ScheduleID,
		SeatIDs:    req.SeatIDs,
		Passenger: payments.Passenger{
			Name:  req.PassengerName,
			Email: req.PassengerEmail,
			Phone: req.PassengerPhone,
		},
	})
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, initializeResp{
		Message:        "Payment initialized",
		OrderID:        out.OrderID,
		RedirectTarget: out.RedirectTarget,
		Amount:         float64(out.AmountCents) / 100,
	})
}

// notify is the gateway's server-to-server callback. PayHere posts a form;
// JSON is accepted as well.
func (h *PaymentsHandler) notify(w http.ResponseWriter, r *http.Request) {
	n, err := readNotification(w, r)
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.HandleNotification(ctx, n)
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	msg := "Payment " + string(res.Status)
	if !res.Applied {
		msg = "Notification already processed"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg, "status": string(res.Status)})
}

func readNotification(w http.ResponseWriter, r *http.Request) (payhere.Notification, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return payhere.Notification{}, apperr.Malformed("unreadable body")
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		n, err := payhere.FromJSON(body)
		if err != nil {
			return payhere.Notification{}, apperr.Malformed("invalid JSON body")
		}
		return n, nil
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return payhere.Notification{}, apperr.Malformed("invalid form body")
	}
	return payhere.FromForm(form), nil
}

func (h *PaymentsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		respondError(w, r, h.Log, apperr.Validation("Order ID is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Svc.Cancel(ctx, orderID)
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	msg := "Payment cancelled"
	if !res.Applied {
		msg = "Payment already " + string(res.Status)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg, "status": string(res.Status)})
}

func (h *PaymentsHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.Svc.Status(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
