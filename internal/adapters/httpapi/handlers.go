package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"
	"subasta-auction-service/internal/ports/inbound"
	"subasta-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler exposes the auction lifecycle over the REST API consumed by the
// mobile client. Route and field names follow the client's wire format.
type Handler struct {
	service    inbound.AuctionService
	imageStore outbound.ImageStore
	logger     zerolog.Logger
}

type HandlerParams struct {
	Service    inbound.AuctionService
	ImageStore outbound.ImageStore
	Logger     zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		service:    params.Service,
		imageStore: params.ImageStore,
		logger:     params.Logger.With().Str("component", "http_handler").Logger(),
	}
}

// Register mounts all routes on the echo instance
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Health)
	e.GET("/subastas", h.ListAuctions)
	e.POST("/subastas", h.CreateAuction)
	e.POST("/subastas/:id/ocuparPuesto", h.OccupySlot)
	e.POST("/subastas/:id/finalizar", h.Finalize)
	e.DELETE("/subastas/:id", h.DeleteAuction)
	e.POST("/upload", h.Upload)
}

// Health is a liveness probe
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"service":   "subasta-service",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ListAuctions returns every auction, newest first
func (h *Handler) ListAuctions(c echo.Context) error {
	auctions, err := h.service.ListAuctions(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list auctions")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor"})
	}

	if auctions == nil {
		auctions = []*auction.Auction{}
	}

	return c.JSON(http.StatusOK, auctions)
}

// CreateAuction creates a new auction with its 100 vacant slots
func (h *Handler) CreateAuction(c echo.Context) error {
	var req inbound.CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to bind create request")
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Cuerpo de la petición inválido"})
	}

	created, err := h.service.CreateAuction(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidAuctionParameters) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"msg": "Por favor, introduce todos los campos obligatorios: titulo, descripcion, precioInicial, fechaFin",
			})
		}
		h.logger.Error().Err(err).Msg("Failed to create auction")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor al crear la subasta"})
	}

	return c.JSON(http.StatusCreated, created)
}

type occupySlotRequest struct {
	SlotNumber int     `json:"puestoNumero"`
	Amount     float64 `json:"montoPuja"`
	BidderID   string  `json:"pujadorId"`
}

// OccupySlot places a bid on one slot of an auction
func (h *Handler) OccupySlot(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
	}

	var req occupySlotRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to bind bid request")
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Cuerpo de la petición inválido"})
	}

	if req.SlotNumber == 0 || req.Amount == 0 || req.BidderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"msg": "Número de puesto, monto de puja y ID del pujador son obligatorios",
		})
	}

	updated, err := h.service.PlaceBid(c.Request().Context(), inbound.PlaceBidRequest{
		AuctionID:  auctionID,
		SlotNumber: req.SlotNumber,
		Amount:     req.Amount,
		BidderID:   req.BidderID,
	})
	if err != nil {
		return h.bidError(c, err, req.SlotNumber)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":                fmt.Sprintf("Puesto %d ocupado con éxito", req.SlotNumber),
		"subastaActualizada": updated,
	})
}

// Finalize closes an auction and reports the winner
func (h *Handler) Finalize(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
	}

	result, err := h.service.Finalize(c.Request().Context(), auctionID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAuctionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
		case errors.Is(err, shared.ErrAuctionAlreadyFinalized):
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La subasta ya está finalizada"})
		default:
			h.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to finalize auction")
			return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor al finalizar"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":     "Subasta finalizada con éxito",
		"subasta": result.Auction,
		"resultado": echo.Map{
			"puestoGanador": result.WinningSlot,
			"pujaGanadora":  result.WinningBid,
			"ganadorNombre": result.WinnerName,
		},
	})
}

// DeleteAuction removes an auction and its slots
func (h *Handler) DeleteAuction(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
	}

	if err := h.service.DeleteAuction(c.Request().Context(), auctionID); err != nil {
		if errors.Is(err, shared.ErrAuctionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
		}
		h.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to delete auction")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor al eliminar"})
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Subasta eliminada con éxito"})
}

// Upload accepts a multipart image and returns its stored path
func (h *Handler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "No se ha subido ningún archivo."})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "¡Solo se permiten archivos de imagen!"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to open uploaded file")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor"})
	}

	path, err := h.imageStore.Upload(c.Request().Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to store uploaded file")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":      "Archivo subido con éxito",
		"filePath": path,
	})
}

// bidError maps bidding failures to the client-facing responses
func (h *Handler) bidError(c echo.Context, err error, slotNumber int) error {
	switch {
	case errors.Is(err, shared.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"msg": "Subasta no encontrada"})
	case errors.Is(err, shared.ErrInvalidSlotNumber):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El número de puesto debe estar entre 1 y 100"})
	case errors.Is(err, shared.ErrAuctionNotActive):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La subasta no está activa para ocupar puestos"})
	case errors.Is(err, shared.ErrAuctionExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La subasta ha finalizado"})
	case errors.Is(err, shared.ErrSlotAlreadyOccupied):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": fmt.Sprintf("El puesto %d ya está ocupado.", slotNumber)})
	case errors.Is(err, shared.ErrBidTooLow):
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La puja debe ser mayor que el precio inicial"})
	default:
		h.logger.Error().Err(err).Msg("Failed to place bid")
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error del servidor al ocupar el puesto"})
	}
}
