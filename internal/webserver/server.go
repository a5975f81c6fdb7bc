package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/toyorbit/toyorbit/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ApiPrefix = "/api"
	// AppContextKey is the echo context key holding the application context
	AppContextKey = "appctx"

	metricsSubsystem = "toyorbit"
)

// AdminServer is the HTTP surface. Routes registered with the Api* methods
// live under /api and require a valid token unless registered as public.
type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	public map[string]bool
	config *config.AppConfig
}

// NewAdminServer builds the echo instance with the shared middleware chain.
// appCtx is stored on every request context for handlers to retrieve.
func NewAdminServer(cfg *config.AppConfig, appCtx interface{}) *AdminServer {
	s := &AdminServer{
		root:   echo.New(),
		public: map[string]bool{},
		config: cfg,
	}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = cfg.System.Debug
	s.root.JSONSerializer = new(JSONIterSerializer)
	s.root.Validator = NewValidator()
	s.root.HTTPErrorHandler = HTTPErrorHandler

	s.root.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.S().Errorf("panic recovered: %v\n%s", err, stack)
			return err
		},
	}))
	s.root.Use(middleware.RequestID())
	s.root.Use(AccessLog())
	s.root.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Cors.Origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	if cfg.Web.Metrics {
		// exposes /metrics on the root router, outside the token check
		prometheus.NewPrometheus(metricsSubsystem, nil).Use(s.root)
	}

	s.root.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": cfg.System.Appid + " API is running"})
	})
	s.root.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "time": time.Now().UTC()})
	})

	s.api = s.root.Group(ApiPrefix)
	if cfg.RateLimit.Enabled {
		s.api.Use(RateLimit(cfg.RateLimit.Window, cfg.RateLimit.Max))
	}
	s.api.Use(JWTAuth(cfg.Auth.JwtSecret, func(c echo.Context) bool {
		return s.public[c.Request().Method+" "+c.Path()]
	}))
	return s
}

func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

func (s *AdminServer) add(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.Add(method, path, h, m...)
}

func (s *AdminServer) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.add(http.MethodGet, path, h, m...)
}

func (s *AdminServer) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.add(http.MethodPost, path, h, m...)
}

func (s *AdminServer) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.add(http.MethodPut, path, h, m...)
}

func (s *AdminServer) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.add(http.MethodDelete, path, h, m...)
}

// ApiPublicPOST registers a route that skips token verification
func (s *AdminServer) ApiPublicPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.public[http.MethodPost+" "+ApiPrefix+path] = true
	s.add(http.MethodPost, path, h, m...)
}

// LoginRateLimit is the stricter limiter for credential endpoints, nil when disabled
func (s *AdminServer) LoginRateLimit() []echo.MiddlewareFunc {
	if !s.config.RateLimit.Enabled {
		return nil
	}
	return []echo.MiddlewareFunc{RateLimit(s.config.RateLimit.LoginWindow, s.config.RateLimit.LoginMax)}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *AdminServer) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		zap.S().Infof("admin server listening on %s", s.config.Addr())
		errc <- s.root.Start(s.config.Addr())
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdown)
	}
}

// RateLimit allows max requests per window and client IP
func RateLimit(window time.Duration, max int) echo.MiddlewareFunc {
	if window <= 0 || max <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
