package app

import (
	"time"

	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"

	"github.com/rs/zerolog"
)

// SlotBiddingEngine validates and applies a single bid to one slot of one
// auction. It mutates the passed-in aggregate only; loading and persisting
// the aggregate is the caller's responsibility.
type SlotBiddingEngine struct {
	logger zerolog.Logger
}

type SlotBiddingEngineParams struct {
	Logger zerolog.Logger
}

// NewSlotBiddingEngine creates a new slot bidding engine
func NewSlotBiddingEngine(params SlotBiddingEngineParams) *SlotBiddingEngine {
	return &SlotBiddingEngine{
		logger: params.Logger.With().Str("component", "slot_bidding_engine").Logger(),
	}
}

// PlaceBid occupies the requested slot for the bidder. Preconditions are
// checked in order: slot number in range, auction active, auction not past
// its end time, slot vacant, amount strictly above the base price. On
// success the slot is occupied and the auction's current price raised if
// the bid exceeds it.
func (engine *SlotBiddingEngine) PlaceBid(a *auction.Auction, slotNumber int, amount float64, bidderID string, now time.Time) error {
	engine.logger.Debug().
		Str("auction_id", a.ID.String()).
		Int("slot_number", slotNumber).
		Float64("amount", amount).
		Str("bidder_id", bidderID).
		Msg("Validating bid")

	if slotNumber < 1 || slotNumber > auction.NumSlots {
		engine.logger.Warn().Int("slot_number", slotNumber).Msg("Slot number out of range")
		return shared.ErrInvalidSlotNumber
	}

	if !a.IsActive() {
		engine.logger.Warn().
			Str("auction_id", a.ID.String()).
			Str("status", string(a.Status)).
			Msg("Auction not accepting bids")
		return shared.ErrAuctionNotActive
	}

	if a.IsExpired(now) {
		engine.logger.Warn().
			Str("auction_id", a.ID.String()).
			Time("end_time", a.EndTime).
			Msg("Auction past its end time")
		return shared.ErrAuctionExpired
	}

	slot := a.Slot(slotNumber)
	if slot.IsOccupied() {
		engine.logger.Warn().
			Str("auction_id", a.ID.String()).
			Int("slot_number", slotNumber).
			Str("occupied_by", *slot.OccupiedBy).
			Msg("Slot already occupied")
		return shared.ErrSlotAlreadyOccupied
	}

	if amount <= a.BasePrice {
		engine.logger.Warn().
			Str("auction_id", a.ID.String()).
			Float64("amount", amount).
			Float64("base_price", a.BasePrice).
			Msg("Bid amount not above base price")
		return shared.ErrBidTooLow
	}

	occupiedAt := now
	slot.OccupiedBy = &bidderID
	slot.BidAmount = amount
	slot.OccupiedAt = &occupiedAt
	a.UpdateCurrentPrice(amount)

	engine.logger.Info().
		Str("auction_id", a.ID.String()).
		Int("slot_number", slotNumber).
		Float64("amount", amount).
		Str("bidder_id", bidderID).
		Float64("current_price", a.CurrentPrice).
		Msg("Slot occupied")

	return nil
}
