package httpapi

import (
	"context"
	"fmt"

	"subasta-auction-service/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server wraps the echo instance serving the REST API
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger zerolog.Logger
}

type ServerParams struct {
	Config  *config.Config
	Handler *Handler
	Logger  zerolog.Logger
}

// NewServer builds the echo instance with middleware and routes mounted
func NewServer(params ServerParams) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	params.Handler.Register(e)

	return &Server{
		echo:   e,
		config: params.Config,
		logger: params.Logger.With().Str("component", "http_server").Logger(),
	}
}

// Start begins serving requests; it blocks until the server stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	return s.echo.Start(addr)
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
