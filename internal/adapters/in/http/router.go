package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig configures the middleware chain in front of the Server.
type RouterConfig struct {
	Logger      *slog.Logger
	TokenParser TokenParser
	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter builds the echo instance serving s.
func NewRouter(s *Server, cfg RouterConfig) (*echo.Echo, error) {
	if s == nil {
		return nil, errors.New("http.NewRouter: server is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("http.NewRouter: logger is required")
	}
	if cfg.TokenParser == nil {
		return nil, errors.New("http.NewRouter: token parser is required")
	}

	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	validator, err := OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(RequestLogger(cfg.Logger))
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = max(1, int(cfg.RateLimit))
		}
		e.Use(RateLimiter(cfg.RateLimit, burst))
	}
	e.Use(Authenticate(cfg.TokenParser))
	e.Use(validator)

	e.GET("/health", s.Health)

	RegisterSwagger()
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(SwaggerInstance)))

	RegisterHandlers(e, s)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "route not found")
	})

	return e, nil
}
