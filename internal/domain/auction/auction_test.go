package auction_test

import (
	"testing"
	"time"

	"subasta-auction-service/internal/domain/auction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PrePopulatesSlots(t *testing.T) {
	t.Parallel()

	a := auction.New("Camiseta firmada", "Edición limitada", 50, time.Now().Add(24*time.Hour), "")

	require.Len(t, a.Slots, auction.NumSlots)
	for i, slot := range a.Slots {
		assert.Equal(t, i+1, slot.Number)
		assert.False(t, slot.IsOccupied())
		assert.Nil(t, slot.OccupiedAt)
		assert.Zero(t, slot.BidAmount)
	}

	assert.Equal(t, auction.StatusActive, a.Status)
	assert.Equal(t, 50.0, a.BasePrice)
	assert.Equal(t, 50.0, a.CurrentPrice)
	assert.Nil(t, a.WinningSlot)
	assert.Nil(t, a.WinningBid)
	assert.Nil(t, a.WinnerID)
	assert.NotEqual(t, a.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestSlot_Bounds(t *testing.T) {
	t.Parallel()

	a := auction.New("t", "d", 0, time.Now().Add(time.Hour), "")

	assert.Nil(t, a.Slot(0))
	assert.Nil(t, a.Slot(auction.NumSlots+1))
	assert.Nil(t, a.Slot(-3))

	first := a.Slot(1)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Number)

	last := a.Slot(auction.NumSlots)
	require.NotNil(t, last)
	assert.Equal(t, auction.NumSlots, last.Number)
}

func TestUpdateCurrentPrice_NeverDecreases(t *testing.T) {
	t.Parallel()

	a := auction.New("t", "d", 100, time.Now().Add(time.Hour), "")

	a.UpdateCurrentPrice(150)
	assert.Equal(t, 150.0, a.CurrentPrice)

	a.UpdateCurrentPrice(120)
	assert.Equal(t, 150.0, a.CurrentPrice)

	a.UpdateCurrentPrice(150)
	assert.Equal(t, 150.0, a.CurrentPrice)
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	end := time.Now().Add(time.Hour)
	a := auction.New("t", "d", 0, end, "")

	assert.False(t, a.IsExpired(end.Add(-time.Minute)))
	assert.False(t, a.IsExpired(end))
	assert.True(t, a.IsExpired(end.Add(time.Second)))
}
