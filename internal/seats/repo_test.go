package seats

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-seat-reservations/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestSchedule(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("SELECT (.+) FROM schedules s JOIN trips").
		WithArgs("sch-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "booked_seats", "trip_id", "origin", "destination", "price_cents"}).
			AddRow("sch-1", []string{"A1"}, "trip-1", "Colombo", "Kandy", int64(50000)))

	s, err := repo.Schedule(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), s.Trip.PriceCents)
	assert.Equal(t, []string{"A1"}, s.BookedSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleNotFound(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("SELECT (.+) FROM schedules").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.Schedule(context.Background(), "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailability(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("SELECT booked_seats FROM schedules").
		WithArgs("sch-1").
		WillReturnRows(pgxmock.NewRows([]string{"booked_seats"}).AddRow([]string{"A1", "B2"}))

	av, err := repo.CheckAvailability(context.Background(), "sch-1", []string{"B2", "C3"})
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, []string{"B2"}, av.Conflicting)
}

func TestCommit(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("UPDATE schedules").
		WithArgs("sch-1", []string{"C3", "C4"}).
		WillReturnRows(pgxmock.NewRows([]string{"booked_seats"}).AddRow([]string{"A1", "C3", "C4"}))

	got, err := repo.Commit(context.Background(), "sch-1", []string{"C3", "C4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C3", "C4"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitConflict(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("UPDATE schedules").
		WithArgs("sch-1", []string{"C3", "C4"}).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT booked_seats FROM schedules").
		WithArgs("sch-1").
		WillReturnRows(pgxmock.NewRows([]string{"booked_seats"}).AddRow([]string{"A1", "C3"}))

	_, err := repo.Commit(context.Background(), "sch-1", []string{"C3", "C4"})
	assert.Equal(t, apperr.KindSeatConflict, apperr.KindOf(err))
	assert.Equal(t, []string{"C3"}, apperr.ConflictingSeats(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitUnknownSchedule(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery("UPDATE schedules").WithArgs("nope", []string{"C3"}).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT booked_seats FROM schedules").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.Commit(context.Background(), "nope", []string{"C3"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]string{" A1", "A2 "})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, got)

	for _, in := range [][]string{nil, {"A1", ""}, {"A1", "A1"}} {
		_, err := Normalize(in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%v", in)
	}
}
