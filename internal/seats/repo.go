package seats

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ DB postgres.DBTX }

func (r *Repo) Schedule(ctx context.Context, scheduleID string) (Schedule, error) {
	var s Schedule
	err := r.DB.QueryRow(ctx, `
		SELECT s.id, s.booked_seats, t.id, t.origin, t.destination, t.price_cents
		FROM schedules s JOIN trips t ON t.id = s.trip_id
		WHERE s.id = $1`, scheduleID,
	).Scan(&s.ID, &s.BookedSeats, &s.Trip.ID, &s.Trip.Origin, &s.Trip.Destination, &s.Trip.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return Schedule{}, apperr.NotFound("schedule", scheduleID)
	}
	if err != nil {
		return Schedule{}, fmt.Errorf("get schedule %s: %w", scheduleID, err)
	}
	return s, nil
}

func (r *Repo) BookedSeats(ctx context.Context, scheduleID string) ([]string, error) {
	var booked []string
	err := r.DB.QueryRow(ctx, `SELECT booked_seats FROM schedules WHERE id = $1`, scheduleID).Scan(&booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("schedule", scheduleID)
	}
	if err != nil {
		return nil, fmt.Errorf("booked seats %s: %w", scheduleID, err)
	}
	if booked == nil {
		booked = []string{}
	}
	return booked, nil
}

func (r *Repo) CheckAvailability(ctx context.Context, scheduleID string, seatIDs []string) (Availability, error) {
	booked, err := r.BookedSeats(ctx, scheduleID)
	if err != nil {
		return Availability{}, err
	}
	c := Conflicts(booked, seatIDs)
	return Availability{Available: len(c) == 0, Conflicting: c}, nil
}

// Commit adds seatIDs in one conditional UPDATE: the row lock serializes
// concurrent writers and the overlap test is re-evaluated against the
// committed row, so two overlapping commits cannot both succeed.
func (r *Repo) Commit(ctx context.Context, scheduleID string, seatIDs []string) ([]string, error) {
	var updated []string
	err := r.DB.QueryRow(ctx, `
		UPDATE schedules
		SET booked_seats = booked_seats || $2::text[], updated_at = now()
		WHERE id = $1 AND NOT (booked_seats && $2::text[])
		RETURNING booked_seats`, scheduleID, seatIDs,
	).Scan(&updated)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("commit seats %s: %w", scheduleID, err)
	}

	booked, err := r.BookedSeats(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return nil, apperr.SeatConflict(Conflicts(booked, seatIDs))
}
