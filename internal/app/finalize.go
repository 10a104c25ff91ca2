package app

import (
	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"

	"github.com/rs/zerolog"
)

// FinalizationEngine closes an auction and computes the winning slot. Like
// the bidding engine it only mutates the in-memory aggregate; persistence
// belongs to the caller.
type FinalizationEngine struct {
	logger zerolog.Logger
}

type FinalizationEngineParams struct {
	Logger zerolog.Logger
}

// NewFinalizationEngine creates a new finalization engine
func NewFinalizationEngine(params FinalizationEngineParams) *FinalizationEngine {
	return &FinalizationEngine{
		logger: params.Logger.With().Str("component", "finalization_engine").Logger(),
	}
}

// Finalize transitions the auction to finalized and determines the winner
// by scanning all slots in ascending number order. The comparison is a
// strict greater-than, so among slots tied at the maximum amount the
// lowest-numbered one wins. Finalizing a non-active auction fails; the
// operation is deliberately not idempotent.
func (engine *FinalizationEngine) Finalize(a *auction.Auction) error {
	if !a.IsActive() {
		engine.logger.Warn().
			Str("auction_id", a.ID.String()).
			Str("status", string(a.Status)).
			Msg("Auction already finalized")
		return shared.ErrAuctionAlreadyFinalized
	}

	a.Status = auction.StatusFinalized

	var (
		bestSlot   *int
		bestAmount float64
		winnerID   *string
	)

	for i := range a.Slots {
		slot := &a.Slots[i]
		if slot.IsOccupied() && slot.BidAmount > bestAmount {
			number := slot.Number
			bestSlot = &number
			bestAmount = slot.BidAmount
			winnerID = slot.OccupiedBy
		}
	}

	if bestSlot != nil {
		amount := bestAmount
		a.WinningSlot = bestSlot
		a.WinningBid = &amount
		a.WinnerID = winnerID

		engine.logger.Info().
			Str("auction_id", a.ID.String()).
			Int("winning_slot", *bestSlot).
			Float64("winning_bid", amount).
			Str("winner_id", *winnerID).
			Msg("Auction finalized with winner")
	} else {
		engine.logger.Info().
			Str("auction_id", a.ID.String()).
			Msg("Auction finalized with no occupied slots")
	}

	return nil
}
