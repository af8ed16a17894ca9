package seats

import (
	"strings"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
)

type Trip struct {
	ID          string
	Origin      string
	Destination string
	PriceCents  int64
}

// Schedule is one departure of a Trip. BookedSeats never holds a seat twice.
type Schedule struct {
	ID          string
	Trip        Trip
	BookedSeats []string
}

type Availability struct {
	Available   bool     `json:"available"`
	Conflicting []string `json:"conflicting"`
}

// Conflicts returns the requested seats already present in booked, in request order.
func Conflicts(booked, requested []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}
	out := []string{}
	for _, s := range requested {
		if _, ok := taken[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Normalize trims seat ids and rejects empty lists, blank ids and duplicates.
func Normalize(seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, apperr.Validation("seatIds must not be empty")
	}
	seen := make(map[string]struct{}, len(seatIDs))
	out := make([]string, 0, len(seatIDs))
	for _, s := range seatIDs {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, apperr.Validation("seatIds must not contain blank ids")
		}
		if _, dup := seen[s]; dup {
			return nil, apperr.Validation("seat " + s + " requested more than once")
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
