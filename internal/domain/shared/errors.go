package shared

import "errors"

// Domain-specific errors
var (
	// Auction errors
	ErrAuctionNotFound          = errors.New("auction not found")
	ErrAuctionNotActive         = errors.New("auction is not active")
	ErrAuctionExpired           = errors.New("auction has expired")
	ErrAuctionAlreadyFinalized  = errors.New("auction is already finalized")
	ErrInvalidAuctionParameters = errors.New("invalid auction parameters")

	// Slot bidding errors
	ErrInvalidSlotNumber   = errors.New("slot number must be between 1 and 100")
	ErrSlotAlreadyOccupied = errors.New("slot is already occupied")
	ErrBidTooLow           = errors.New("bid amount must be higher than the base price")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Database errors
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrDatabaseTransaction = errors.New("database transaction failed")
)
