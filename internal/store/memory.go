package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/ariefcatur/go-seat-reservations/internal/seats"
)

// Memory is a process-local store for tests and STORE=memory. One mutex
// guards everything, so Atomically is serializable.
type Memory struct {
	mu    sync.Mutex
	state memState
	now   func() time.Time
}

type memState struct {
	trips     map[string]seats.Trip
	schedules map[string]memSchedule
	payments  map[string]payments.Payment
}

type memSchedule struct {
	tripID string
	booked []string
}

var _ booking.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		state: memState{
			trips:     map[string]seats.Trip{},
			schedules: map[string]memSchedule{},
			payments:  map[string]payments.Payment{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) AddTrip(t seats.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.trips[t.ID] = t
}

func (m *Memory) AddSchedule(id, tripID string, booked ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.trips[tripID]; !ok {
		return fmt.Errorf("add schedule %s: unknown trip %s", id, tripID)
	}
	m.state.schedules[id] = memSchedule{tripID: tripID, booked: slices.Clone(booked)}
	return nil
}

func (m *Memory) Ledger() booking.Ledger { return memView{m: m} }

func (m *Memory) Inventory() booking.Inventory { return memView{m: m} }

// Atomically holds the lock for the whole of fn and restores the previous
// state if fn fails.
func (m *Memory) Atomically(ctx context.Context, fn func(booking.Ledger, booking.Inventory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.state.clone()
	v := memView{m: m, locked: true}
	if err := fn(v, v); err != nil {
		m.state = snap
		return err
	}
	return nil
}

// memView implements both Ledger and Inventory. Inside Atomically the lock
// is already held.
type memView struct {
	m      *Memory
	locked bool
}

func (v memView) lock() func() {
	if v.locked {
		return func() {}
	}
	v.m.mu.Lock()
	return v.m.mu.Unlock
}

func (v memView) Create(ctx context.Context, p *payments.Payment) error {
	defer v.lock()()
	st := &v.m.state
	if _, ok := st.payments[p.OrderID]; ok {
		return apperr.DuplicateOrder(p.OrderID)
	}
	if p.Status == "" {
		p.Status = payments.StatusPending
	}
	now := v.m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	st.payments[p.OrderID] = clonePayment(*p)
	return nil
}

func (v memView) Transition(ctx context.Context, orderID string, to payments.Status, gatewayPaymentID string, raw json.RawMessage) (payments.Payment, bool, error) {
	if !to.Valid() {
		return payments.Payment{}, false, apperr.Validation(fmt.Sprintf("unknown payment status %q", to))
	}
	defer v.lock()()
	st := &v.m.state
	p, ok := st.payments[orderID]
	if !ok {
		return payments.Payment{}, false, apperr.NotFound("payment", orderID)
	}
	if !payments.CanTransition(p.Status, to) {
		return clonePayment(p), false, nil
	}
	p.Status = to
	if gatewayPaymentID != "" {
		p.GatewayPaymentID = gatewayPaymentID
	}
	if len(raw) > 0 {
		p.GatewayResponse = slices.Clone(raw)
	}
	p.UpdatedAt = v.m.now()
	st.payments[orderID] = p
	return clonePayment(p), true, nil
}

func (v memView) GetByOrderID(ctx context.Context, orderID string) (payments.Payment, error) {
	defer v.lock()()
	p, ok := v.m.state.payments[orderID]
	if !ok {
		return payments.Payment{}, apperr.NotFound("payment", orderID)
	}
	return clonePayment(p), nil
}

func (v memView) Schedule(ctx context.Context, scheduleID string) (seats.Schedule, error) {
	defer v.lock()()
	st := &v.m.state
	sc, ok := st.schedules[scheduleID]
	if !ok {
		return seats.Schedule{}, apperr.NotFound("schedule", scheduleID)
	}
	return seats.Schedule{ID: scheduleID, Trip: st.trips[sc.tripID], BookedSeats: slices.Clone(sc.booked)}, nil
}

func (v memView) BookedSeats(ctx context.Context, scheduleID string) ([]string, error) {
	defer v.lock()()
	sc, ok := v.m.state.schedules[scheduleID]
	if !ok {
		return nil, apperr.NotFound("schedule", scheduleID)
	}
	return append([]string{}, sc.booked...), nil
}

func (v memView) CheckAvailability(ctx context.Context, scheduleID string, seatIDs []string) (seats.Availability, error) {
	booked, err := v.BookedSeats(ctx, scheduleID)
	if err != nil {
		return seats.Availability{}, err
	}
	c := seats.Conflicts(booked, seatIDs)
	return seats.Availability{Available: len(c) == 0, Conflicting: c}, nil
}

func (v memView) Commit(ctx context.Context, scheduleID string, seatIDs []string) ([]string, error) {
	defer v.lock()()
	st := &v.m.state
	sc, ok := st.schedules[scheduleID]
	if !ok {
		return nil, apperr.NotFound("schedule", scheduleID)
	}
	if c := seats.Conflicts(sc.booked, seatIDs); len(c) > 0 {
		return nil, apperr.SeatConflict(c)
	}
	sc.booked = append(slices.Clone(sc.booked), seatIDs...)
	st.schedules[scheduleID] = sc
	return slices.Clone(sc.booked), nil
}

func (s memState) clone() memState {
	out := memState{
		trips:     make(map[string]seats.Trip, len(s.trips)),
		schedules: make(map[string]memSchedule, len(s.schedules)),
		payments:  make(map[string]payments.Payment, len(s.payments)),
	}
	for k, t := range s.trips {
		out.trips[k] = t
	}
	for k, sc := range s.schedules {
		out.schedules[k] = memSchedule{tripID: sc.tripID, booked: slices.Clone(sc.booked)}
	}
	for k, p := range s.payments {
		out.payments[k] = clonePayment(p)
	}
	return out
}

func clonePayment(p payments.Payment) payments.Payment {
	p.SeatIDs = slices.Clone(p.SeatIDs)
	p.GatewayResponse = slices.Clone(p.GatewayResponse)
	return p
}
