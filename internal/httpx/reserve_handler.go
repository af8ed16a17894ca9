package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/go-chi/chi/v5"
)

// ReserveHandler serves the read-only seat endpoints. Seats are only ever
// committed by a settled payment.
type ReserveHandler struct {
	Svc *booking.Service
	Log *slog.Logger
}

type checkReq struct {
	ScheduleID string   `json:"scheduleId"`
	SeatIDs    []string `json:"seatIds"`
}

type priceReq struct {
	ScheduleID string `json:"scheduleId"`
	SeatCount  int    `json:"seatCount"`
}

func (h *ReserveHandler) Register(r chi.Router) {
	r.Route("/reserve", func(r chi.Router) {
		r.Post("/check", h.check)
		r.Get("/booked/{scheduleId}", h.booked)
		r.Post("/calculate-price", h.calculatePrice)
	})
}

func (h *ReserveHandler) check(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	av, err := h.Svc.CheckSeats(ctx, req.ScheduleID, req.SeatIDs)
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	msg := "Seats are available"
	if !av.Available {
		msg = "Some seats are already booked"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available":   av.Available,
		"conflicting": av.Conflicting,
		"message":     msg,
	})
}

func (h *ReserveHandler) booked(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	seats, err := h.Svc.BookedSeats(ctx, chi.URLParam(r, "scheduleId"))
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookedSeats": seats})
}

func (h *ReserveHandler) calculatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Svc.CalculatePrice(ctx, req.ScheduleID, req.SeatCount)
	if err != nil {
		respondError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pricePerSeat": float64(q.PricePerSeatCents) / 100,
		"totalPrice":   float64(q.TotalCents) / 100,
		"currency":     q.Currency,
	})
}
