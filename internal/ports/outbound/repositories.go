package outbound

import (
	"context"

	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// AuctionRepository defines the interface for auction aggregate persistence.
// Save always writes the full aggregate; callers serialize access per
// auction, the store itself imposes no concurrency control.
type AuctionRepository interface {
	// Create persists a new auction with all of its slots
	Create(ctx context.Context, a *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// List retrieves all auctions ordered by start time descending
	List(ctx context.Context) ([]*auction.Auction, error)

	// Save persists the full aggregate state of an existing auction
	Save(ctx context.Context, a *auction.Auction) error

	// Delete removes an auction and its slots
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository resolves bidder identities to display names
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*shared.User, error)
}
