package auction

import (
	"time"

	"github.com/google/uuid"
)

// NumSlots is the fixed number of biddable slots every auction carries.
const NumSlots = 100

// Status represents the current status of an auction
type Status string

const (
	StatusActive    Status = "activa"
	StatusFinalized Status = "finalizada"
	StatusCancelled Status = "cancelada"
)

// Slot is one of the 100 numbered positions of an auction. A slot is owned
// exclusively by its auction and, once occupied, stays occupied.
type Slot struct {
	Number     int        `json:"numero"`
	OccupiedBy *string    `json:"ocupadoPor"`
	BidAmount  float64    `json:"montoPuja"`
	OccupiedAt *time.Time `json:"fechaOcupacion"`
}

// IsOccupied returns true if a bidder holds this slot
func (s *Slot) IsOccupied() bool {
	return s.OccupiedBy != nil
}

// Auction is the aggregate root: a timed sale event with 100 slots.
// JSON tags follow the wire format consumed by the mobile client.
type Auction struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"titulo"`
	Description  string    `json:"descripcion"`
	BasePrice    float64   `json:"precioInicial"`
	CurrentPrice float64   `json:"precioActual"`
	StartTime    time.Time `json:"fechaInicio"`
	EndTime      time.Time `json:"fechaFin"`
	Status       Status    `json:"estado"`
	ImageURL     string    `json:"imagenUrl"`
	Slots        []Slot    `json:"puestos"`
	WinningSlot  *int      `json:"puestoGanador"`
	WinningBid   *float64  `json:"pujaGanadora"`
	WinnerID     *string   `json:"ganadorId"`
}

// New builds an active auction with its 100 vacant slots pre-populated.
// CurrentPrice starts at the base price and only moves up with accepted bids.
func New(title, description string, basePrice float64, endTime time.Time, imageURL string) *Auction {
	slots := make([]Slot, NumSlots)
	for i := range slots {
		slots[i] = Slot{Number: i + 1}
	}

	return &Auction{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		BasePrice:    basePrice,
		CurrentPrice: basePrice,
		StartTime:    time.Now(),
		EndTime:      endTime,
		Status:       StatusActive,
		ImageURL:     imageURL,
		Slots:        slots,
	}
}

// IsActive returns true if the auction is currently active
func (a *Auction) IsActive() bool {
	return a.Status == StatusActive
}

// IsExpired returns true if the auction's end time has passed
func (a *Auction) IsExpired(now time.Time) bool {
	return now.After(a.EndTime)
}

// Slot returns the slot with the given number, or nil when the number is
// outside 1..NumSlots. Slot numbers map to the slice index plus one.
func (a *Auction) Slot(number int) *Slot {
	if number < 1 || number > NumSlots {
		return nil
	}
	return &a.Slots[number-1]
}

// UpdateCurrentPrice raises the auction's current price if the new amount
// exceeds it. The price never goes down.
func (a *Auction) UpdateCurrentPrice(amount float64) {
	if amount > a.CurrentPrice {
		a.CurrentPrice = amount
	}
}
