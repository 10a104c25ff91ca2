package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"
	"subasta-auction-service/internal/ports/inbound"
	"subasta-auction-service/internal/ports/outbound"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuctionService orchestrates the auction lifecycle. It is the only
// component that calls the store, and it serializes every load-mutate-save
// cycle per auction so concurrent bids cannot overwrite each other's slot
// mutations.
type AuctionService struct {
	auctionRepo outbound.AuctionRepository
	userRepo    outbound.UserRepository
	bidding     *SlotBiddingEngine
	finalizer   *FinalizationEngine
	schedule    outbound.ExpirySchedule
	logger      zerolog.Logger

	// one mutex per auction id, created on first use
	locks sync.Map
}

type AuctionServiceParams struct {
	AuctionRepo outbound.AuctionRepository
	UserRepo    outbound.UserRepository
	Bidding     *SlotBiddingEngine
	Finalizer   *FinalizationEngine
	Schedule    outbound.ExpirySchedule
	Logger      zerolog.Logger
}

// NewAuctionService creates a new auction lifecycle service
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	return &AuctionService{
		auctionRepo: params.AuctionRepo,
		userRepo:    params.UserRepo,
		bidding:     params.Bidding,
		finalizer:   params.Finalizer,
		schedule:    params.Schedule,
		logger:      params.Logger.With().Str("component", "auction_service").Logger(),
	}
}

// SetSchedule sets the expiry schedule after construction, mirroring the
// two-phase wiring in main where the sweeper needs the service first.
func (service *AuctionService) SetSchedule(schedule outbound.ExpirySchedule) {
	service.schedule = schedule
}

// CreateAuction validates the request and persists a new auction with its
// 100 vacant slots
func (service *AuctionService) CreateAuction(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	service.logger.Info().
		Str("title", req.Title).
		Float64("base_price", req.BasePrice).
		Time("end_time", req.EndTime).
		Msg("Attempting to create auction")

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.BasePrice, validation.Min(0.0)),
		validation.Field(&req.EndTime, validation.Required),
	); err != nil {
		service.logger.Warn().Err(err).Msg("Invalid auction parameters")
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidAuctionParameters, err)
	}

	if !req.EndTime.After(time.Now()) {
		service.logger.Warn().Time("end_time", req.EndTime).Msg("End time must be in the future")
		return nil, fmt.Errorf("%w: end time must be in the future", shared.ErrInvalidAuctionParameters)
	}

	a := auction.New(req.Title, req.Description, req.BasePrice, req.EndTime, req.ImageURL)

	if err := service.auctionRepo.Create(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to save auction to database")
		return nil, err
	}

	service.logger.Info().
		Str("auction_id", a.ID.String()).
		Int("slots", len(a.Slots)).
		Msg("Auction created successfully")

	// Enroll for background expiry. The on-access check below remains the
	// correctness backstop, so a scheduling failure is not fatal.
	if service.schedule != nil {
		if err := service.schedule.Schedule(a.ID, a.EndTime); err != nil {
			service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to schedule auction expiry")
		}
	}

	return a, nil
}

// GetAuction retrieves an auction by ID
func (service *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return service.auctionRepo.GetByID(ctx, auctionID)
}

// ListAuctions retrieves all auctions, newest first
func (service *AuctionService) ListAuctions(ctx context.Context) ([]*auction.Auction, error) {
	return service.auctionRepo.List(ctx)
}

// PlaceBid occupies one slot of an active auction. An active auction whose
// end time has passed is finalized on the spot and the bid is rejected with
// ErrAuctionExpired.
func (service *AuctionService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*auction.Auction, error) {
	service.logger.Info().
		Str("auction_id", req.AuctionID.String()).
		Int("slot_number", req.SlotNumber).
		Float64("amount", req.Amount).
		Str("bidder_id", req.BidderID).
		Msg("Attempting to place bid")

	mu := service.lockFor(req.AuctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := service.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", req.AuctionID.String()).Msg("Failed to load auction")
		return nil, err
	}

	expired, err := service.expireIfOverdue(ctx, a)
	if err != nil {
		return nil, err
	}
	if expired {
		service.logger.Warn().Str("auction_id", a.ID.String()).Msg("Bid rejected, auction expired")
		return nil, shared.ErrAuctionExpired
	}

	if err := service.bidding.PlaceBid(a, req.SlotNumber, req.Amount, req.BidderID, time.Now()); err != nil {
		return nil, err
	}

	if err := service.auctionRepo.Save(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to persist bid")
		return nil, err
	}

	return a, nil
}

// Finalize closes an auction and computes its winner. A second call on the
// same auction fails with ErrAuctionAlreadyFinalized.
func (service *AuctionService) Finalize(ctx context.Context, auctionID uuid.UUID) (*inbound.FinalizeResult, error) {
	service.logger.Info().Str("auction_id", auctionID.String()).Msg("Finalizing auction")

	mu := service.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := service.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		service.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to load auction")
		return nil, err
	}

	if err := service.finalizer.Finalize(a); err != nil {
		return nil, err
	}

	if err := service.auctionRepo.Save(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to persist finalized auction")
		return nil, err
	}

	result := &inbound.FinalizeResult{
		Auction:     a,
		WinningSlot: a.WinningSlot,
		WinningBid:  a.WinningBid,
		WinnerName:  service.resolveWinnerName(ctx, a.WinnerID),
	}

	return result, nil
}

// FinalizeExpired finalizes an overdue auction on behalf of the expiry
// sweeper. Implements scheduler.AuctionFinalizer.
func (service *AuctionService) FinalizeExpired(ctx context.Context, auctionID uuid.UUID) error {
	_, err := service.Finalize(ctx, auctionID)
	return err
}

// DeleteAuction removes the whole aggregate
func (service *AuctionService) DeleteAuction(ctx context.Context, auctionID uuid.UUID) error {
	service.logger.Info().Str("auction_id", auctionID.String()).Msg("Deleting auction")

	mu := service.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	return service.auctionRepo.Delete(ctx, auctionID)
}

// expireIfOverdue finalizes and persists an active auction whose end time
// has passed. It reports whether the auction was expired here.
func (service *AuctionService) expireIfOverdue(ctx context.Context, a *auction.Auction) (bool, error) {
	if !a.IsActive() || !a.IsExpired(time.Now()) {
		return false, nil
	}

	service.logger.Info().
		Str("auction_id", a.ID.String()).
		Time("end_time", a.EndTime).
		Msg("Auction overdue, finalizing lazily")

	if err := service.finalizer.Finalize(a); err != nil {
		return false, err
	}
	if err := service.auctionRepo.Save(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to persist lazily expired auction")
		return false, err
	}

	return true, nil
}

// resolveWinnerName looks up the winner's display name, falling back to
// "N/A" for vacant wins or unknown bidder ids.
func (service *AuctionService) resolveWinnerName(ctx context.Context, winnerID *string) string {
	if winnerID == nil || service.userRepo == nil {
		return "N/A"
	}

	user, err := service.userRepo.GetByID(ctx, *winnerID)
	if err != nil {
		if !errors.Is(err, shared.ErrUserNotFound) {
			service.logger.Error().Err(err).Str("winner_id", *winnerID).Msg("Failed to resolve winner name")
		}
		return "N/A"
	}

	return user.Name
}

// lockFor returns the mutex guarding the given auction's read-modify-write
// cycle
func (service *AuctionService) lockFor(auctionID uuid.UUID) *sync.Mutex {
	mu, _ := service.locks.LoadOrStore(auctionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
