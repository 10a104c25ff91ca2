package outbound

import (
	"time"

	"github.com/google/uuid"
)

// ExpirySchedule enrolls auctions for background expiry. The sweep is a
// complement to the on-access expiry check, never a replacement for it.
type ExpirySchedule interface {
	// Schedule registers an auction to be finalized once endTime passes
	Schedule(auctionID uuid.UUID, endTime time.Time) error
}
