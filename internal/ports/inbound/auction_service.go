package inbound

import (
	"context"
	"time"

	"subasta-auction-service/internal/domain/auction"

	"github.com/google/uuid"
)

// AuctionService defines the auction lifecycle operations exposed to the
// transport layer. It is the only entry point that touches persistence.
type AuctionService interface {
	// CreateAuction validates the request and persists a new auction with
	// its 100 vacant slots
	CreateAuction(ctx context.Context, req CreateAuctionRequest) (*auction.Auction, error)

	// GetAuction retrieves an auction by ID
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// ListAuctions retrieves all auctions, newest first
	ListAuctions(ctx context.Context) ([]*auction.Auction, error)

	// PlaceBid occupies one slot of an active auction
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*auction.Auction, error)

	// Finalize closes an auction and computes its winner
	Finalize(ctx context.Context, auctionID uuid.UUID) (*FinalizeResult, error)

	// DeleteAuction removes the whole aggregate
	DeleteAuction(ctx context.Context, auctionID uuid.UUID) error
}

// request to create an auction
type CreateAuctionRequest struct {
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	BasePrice   float64   `json:"precioInicial"`
	EndTime     time.Time `json:"fechaFin"`
	ImageURL    string    `json:"imagenUrl"`
}

// request to occupy a slot
type PlaceBidRequest struct {
	AuctionID  uuid.UUID
	SlotNumber int
	Amount     float64
	BidderID   string
}

// FinalizeResult carries the closed auction together with the resolved
// winner summary. The winner fields stay nil when no slot was occupied.
type FinalizeResult struct {
	Auction     *auction.Auction
	WinningSlot *int
	WinningBid  *float64
	WinnerName  string
}
