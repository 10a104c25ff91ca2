package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"subasta-auction-service/internal/adapters/httpapi"
	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"
	"subasta-auction-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService scripts the lifecycle service for transport-level tests
type fakeService struct {
	createFn   func(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error)
	listFn     func(ctx context.Context) ([]*auction.Auction, error)
	bidFn      func(ctx context.Context, req inbound.PlaceBidRequest) (*auction.Auction, error)
	finalizeFn func(ctx context.Context, auctionID uuid.UUID) (*inbound.FinalizeResult, error)
	deleteFn   func(ctx context.Context, auctionID uuid.UUID) error
}

func (f *fakeService) CreateAuction(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	return f.createFn(ctx, req)
}

func (f *fakeService) GetAuction(_ context.Context, _ uuid.UUID) (*auction.Auction, error) {
	return nil, shared.ErrAuctionNotFound
}

func (f *fakeService) ListAuctions(ctx context.Context) ([]*auction.Auction, error) {
	return f.listFn(ctx)
}

func (f *fakeService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*auction.Auction, error) {
	return f.bidFn(ctx, req)
}

func (f *fakeService) Finalize(ctx context.Context, auctionID uuid.UUID) (*inbound.FinalizeResult, error) {
	return f.finalizeFn(ctx, auctionID)
}

func (f *fakeService) DeleteAuction(ctx context.Context, auctionID uuid.UUID) error {
	return f.deleteFn(ctx, auctionID)
}

func newTestServer(service inbound.AuctionService) *echo.Echo {
	e := echo.New()
	handler := httpapi.NewHandler(httpapi.HandlerParams{
		Service: service,
		Logger:  zerolog.Nop(),
	})
	handler.Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAuction_Created(t *testing.T) {
	t.Parallel()

	created := auction.New("Camiseta", "firmada", 100, time.Now().Add(24*time.Hour), "")
	e := newTestServer(&fakeService{
		createFn: func(_ context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
			assert.Equal(t, "Camiseta", req.Title)
			assert.Equal(t, 100.0, req.BasePrice)
			return created, nil
		},
	})

	body := `{"titulo":"Camiseta","descripcion":"firmada","precioInicial":100,"fechaFin":"2031-01-01T00:00:00Z"}`
	rec := doJSON(e, http.MethodPost, "/subastas", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got auction.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Camiseta", got.Title)
	assert.Len(t, got.Slots, auction.NumSlots)
	assert.Equal(t, auction.StatusActive, got.Status)
}

func TestCreateAuction_MissingFields(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{
		createFn: func(_ context.Context, _ inbound.CreateAuctionRequest) (*auction.Auction, error) {
			return nil, shared.ErrInvalidAuctionParameters
		},
	})

	rec := doJSON(e, http.MethodPost, "/subastas", `{"titulo":"solo titulo"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "campos obligatorios")
}

func TestListAuctions_EmptyIsArray(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{
		listFn: func(_ context.Context) ([]*auction.Auction, error) {
			return nil, nil
		},
	})

	rec := doJSON(e, http.MethodGet, "/subastas", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestOccupySlot_Success(t *testing.T) {
	t.Parallel()

	a := auction.New("t", "d", 100, time.Now().Add(time.Hour), "")
	e := newTestServer(&fakeService{
		bidFn: func(_ context.Context, req inbound.PlaceBidRequest) (*auction.Auction, error) {
			assert.Equal(t, 7, req.SlotNumber)
			assert.Equal(t, 150.0, req.Amount)
			assert.Equal(t, "bidder-1", req.BidderID)
			return a, nil
		},
	})

	body := `{"puestoNumero":7,"montoPuja":150,"pujadorId":"bidder-1"}`
	rec := doJSON(e, http.MethodPost, "/subastas/"+a.ID.String()+"/ocuparPuesto", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Puesto 7 ocupado con éxito")
	assert.Contains(t, rec.Body.String(), "subastaActualizada")
}

func TestOccupySlot_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", shared.ErrAuctionNotFound, http.StatusNotFound, "Subasta no encontrada"},
		{"occupied", shared.ErrSlotAlreadyOccupied, http.StatusBadRequest, "ya está ocupado"},
		{"too low", shared.ErrBidTooLow, http.StatusBadRequest, "mayor que el precio inicial"},
		{"not active", shared.ErrAuctionNotActive, http.StatusBadRequest, "no está activa"},
		{"expired", shared.ErrAuctionExpired, http.StatusBadRequest, "ha finalizado"},
		{"bad slot", shared.ErrInvalidSlotNumber, http.StatusBadRequest, "entre 1 y 100"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newTestServer(&fakeService{
				bidFn: func(_ context.Context, _ inbound.PlaceBidRequest) (*auction.Auction, error) {
					return nil, tc.err
				},
			})

			body := `{"puestoNumero":3,"montoPuja":150,"pujadorId":"bidder-1"}`
			rec := doJSON(e, http.MethodPost, "/subastas/"+uuid.NewString()+"/ocuparPuesto", body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantMsg)
		})
	}
}

func TestOccupySlot_MissingFields(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{})

	rec := doJSON(e, http.MethodPost, "/subastas/"+uuid.NewString()+"/ocuparPuesto", `{"puestoNumero":3}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "obligatorios")
}

func TestOccupySlot_MalformedID(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{})

	body := `{"puestoNumero":3,"montoPuja":150,"pujadorId":"bidder-1"}`
	rec := doJSON(e, http.MethodPost, "/subastas/not-a-uuid/ocuparPuesto", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFinalize_Success(t *testing.T) {
	t.Parallel()

	a := auction.New("t", "d", 100, time.Now().Add(time.Hour), "")
	winningSlot := 12
	winningBid := 120.0

	e := newTestServer(&fakeService{
		finalizeFn: func(_ context.Context, _ uuid.UUID) (*inbound.FinalizeResult, error) {
			return &inbound.FinalizeResult{
				Auction:     a,
				WinningSlot: &winningSlot,
				WinningBid:  &winningBid,
				WinnerName:  "Ana",
			}, nil
		},
	})

	rec := doJSON(e, http.MethodPost, "/subastas/"+a.ID.String()+"/finalizar", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Msg       string `json:"msg"`
		Resultado struct {
			PuestoGanador *int     `json:"puestoGanador"`
			PujaGanadora  *float64 `json:"pujaGanadora"`
			GanadorNombre string   `json:"ganadorNombre"`
		} `json:"resultado"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Subasta finalizada con éxito", payload.Msg)
	require.NotNil(t, payload.Resultado.PuestoGanador)
	assert.Equal(t, 12, *payload.Resultado.PuestoGanador)
	assert.Equal(t, 120.0, *payload.Resultado.PujaGanadora)
	assert.Equal(t, "Ana", payload.Resultado.GanadorNombre)
}

func TestFinalize_AlreadyFinalized(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{
		finalizeFn: func(_ context.Context, _ uuid.UUID) (*inbound.FinalizeResult, error) {
			return nil, shared.ErrAuctionAlreadyFinalized
		},
	})

	rec := doJSON(e, http.MethodPost, "/subastas/"+uuid.NewString()+"/finalizar", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ya está finalizada")
}

func TestDeleteAuction(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return nil
		},
	})

	rec := doJSON(e, http.MethodDelete, "/subastas/"+uuid.NewString(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Subasta eliminada con éxito")
}

func TestDeleteAuction_NotFound(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return shared.ErrAuctionNotFound
		},
	})

	rec := doJSON(e, http.MethodDelete, "/subastas/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_NoFile(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No se ha subido ningún archivo")
}
