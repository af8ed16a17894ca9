// Package store binds the payment ledger and seat inventory to a backend
// and runs multi-resource writes atomically.
package store

import (
	"context"

	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/ariefcatur/go-seat-reservations/internal/payments"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
	"github.com/ariefcatur/go-seat-reservations/internal/seats"
	"github.com/jackc/pgx/v5"
)

type PgxDB interface {
	postgres.DBTX
	postgres.TxBeginner
}

// Postgres backs both resources with one database; Atomically is a single
// transaction.
type Postgres struct {
	DB PgxDB
}

var _ booking.Store = (*Postgres)(nil)

func (s *Postgres) Ledger() booking.Ledger { return &payments.Repo{DB: s.DB} }

func (s *Postgres) Inventory() booking.Inventory { return &seats.Repo{DB: s.DB} }

func (s *Postgres) Atomically(ctx context.Context, fn func(booking.Ledger, booking.Inventory) error) error {
	return postgres.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&payments.Repo{DB: tx}, &seats.Repo{DB: tx})
	})
}
