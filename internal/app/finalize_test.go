package app_test

import (
	"testing"
	"time"

	"subasta-auction-service/internal/app"
	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinalizationEngine() *app.FinalizationEngine {
	return app.NewFinalizationEngine(app.FinalizationEngineParams{Logger: zerolog.Nop()})
}

func occupy(a *auction.Auction, number int, amount float64, bidderID string) {
	slot := a.Slot(number)
	now := time.Now()
	slot.OccupiedBy = &bidderID
	slot.BidAmount = amount
	slot.OccupiedAt = &now
	a.UpdateCurrentPrice(amount)
}

func TestFinalize_LowestSlotWinsTies(t *testing.T) {
	t.Parallel()

	engine := newFinalizationEngine()
	a := activeAuction(10)
	occupy(a, 5, 80, "bidder-a")
	occupy(a, 12, 120, "bidder-b")
	occupy(a, 40, 120, "bidder-c")

	require.NoError(t, engine.Finalize(a))

	assert.Equal(t, auction.StatusFinalized, a.Status)
	require.NotNil(t, a.WinningSlot)
	assert.Equal(t, 12, *a.WinningSlot)
	require.NotNil(t, a.WinningBid)
	assert.Equal(t, 120.0, *a.WinningBid)
	require.NotNil(t, a.WinnerID)
	assert.Equal(t, "bidder-b", *a.WinnerID)
}

func TestFinalize_NoOccupiedSlots(t *testing.T) {
	t.Parallel()

	engine := newFinalizationEngine()
	a := activeAuction(10)

	require.NoError(t, engine.Finalize(a))

	assert.Equal(t, auction.StatusFinalized, a.Status)
	assert.Nil(t, a.WinningSlot)
	assert.Nil(t, a.WinningBid)
	assert.Nil(t, a.WinnerID)
}

func TestFinalize_NotReentrant(t *testing.T) {
	t.Parallel()

	engine := newFinalizationEngine()
	a := activeAuction(10)
	occupy(a, 1, 50, "bidder-a")

	require.NoError(t, engine.Finalize(a))

	err := engine.Finalize(a)
	assert.ErrorIs(t, err, shared.ErrAuctionAlreadyFinalized)

	// The original winner fields stay untouched
	assert.Equal(t, 1, *a.WinningSlot)
	assert.Equal(t, 50.0, *a.WinningBid)
}

func TestFinalize_CancelledAuctionRejected(t *testing.T) {
	t.Parallel()

	engine := newFinalizationEngine()
	a := activeAuction(10)
	a.Status = auction.StatusCancelled

	err := engine.Finalize(a)
	assert.ErrorIs(t, err, shared.ErrAuctionAlreadyFinalized)
	assert.Equal(t, auction.StatusCancelled, a.Status)
}

func TestFinalize_SingleHighestSlotWins(t *testing.T) {
	t.Parallel()

	engine := newFinalizationEngine()
	a := activeAuction(10)
	occupy(a, 99, 20, "bidder-a")
	occupy(a, 2, 75, "bidder-b")
	occupy(a, 50, 60, "bidder-c")

	require.NoError(t, engine.Finalize(a))

	assert.Equal(t, 2, *a.WinningSlot)
	assert.Equal(t, 75.0, *a.WinningBid)
	assert.Equal(t, "bidder-b", *a.WinnerID)
}
