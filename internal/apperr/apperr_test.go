package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("initialize: %w", SeatConflict([]string{"A1", "A2"}))

	assert.Equal(t, KindSeatConflict, KindOf(err))
	assert.True(t, Is(err, KindSeatConflict))
	assert.Equal(t, []string{"A1", "A2"}, ConflictingSeats(err))
	assert.Contains(t, err.Error(), "Seats A1, A2 are already booked!")
}

func TestKindOfUntypedIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
	assert.Nil(t, ConflictingSeats(NotFound("schedule", "s1")))
}
