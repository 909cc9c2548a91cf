package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/internal/rate"
	"github.com/MrEthical07/goFlow/jwt"
	"github.com/MrEthical07/goFlow/metrics/export/prometheus"
	"github.com/MrEthical07/goFlow/middleware"
	"github.com/MrEthical07/goFlow/pkg/log"
	"github.com/MrEthical07/goFlow/transport"
)

// BrowserClient is the provider surface beyond flow reads and submissions:
// starting browser flows and resolving the current session.
// [transport.Client] implements it.
type BrowserClient interface {
	CreateBrowserFlow(ctx context.Context, kind flow.Type, returnTo string) (flow.Document, error)
	Whoami(ctx context.Context) (transport.Session, error)
}

// Config wires a [Server].
type Config struct {
	Engine *goFlow.Engine
	// Browser defaults to the engine provider when it implements
	// [BrowserClient].
	Browser BrowserClient
	// Verifier enables tokenized session lookups for /api/viewer. Without
	// it the viewer is always resolved through Browser.
	Verifier      *jwt.Verifier
	SessionCookie string
	// Limiter throttles submissions and logouts per client IP. Nil
	// disables throttling.
	Limiter *rate.Limiter
	Logger  *slog.Logger
	Version string
}

// Server implements the HTTP API
type Server struct {
	engine        *goFlow.Engine
	browser       BrowserClient
	verifier      *jwt.Verifier
	sessionCookie string
	limiter       *rate.Limiter
	logger        *slog.Logger
	metrics       *prometheus.Exporter
	version       string
	started       time.Time
}

var (
	ErrEngineRequired = errors.New("engine required")

	errFlowIDRequired     = errors.New("flow id required")
	errUnknownFlowType    = errors.New("unknown flow type")
	errInvalidJSON        = errors.New("invalid JSON body")
	errUnsupportedMethod  = errors.New("unsupported method for this flow")
	errBrowserUnavailable = errors.New("browser flows are not available")
	errRateLimited        = errors.New("too many submissions")
)

// NewServer validates cfg and returns a server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, ErrEngineRequired
	}

	browser := cfg.Browser
	if browser == nil {
		browser, _ = cfg.Engine.Provider().(BrowserClient)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		engine:        cfg.Engine,
		browser:       browser,
		verifier:      cfg.Verifier,
		sessionCookie: cfg.SessionCookie,
		limiter:       cfg.Limiter,
		logger:        logger,
		metrics:       prometheus.New(cfg.Engine),
		version:       version,
		started:       time.Now(),
	}, nil
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(_ *gin.Context, _ *slog.Logger) *slog.Logger {
			return s.logger
		}),
	))
	router.Use(fromHTTP(middleware.RequestContext))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/flows/:type", s.getFlow)
		api.POST("/flows/:type", s.throttle, s.submitFlow)
		api.POST("/logout", s.throttle, s.logout)
		api.GET("/viewer", fromHTTP(middleware.OptionalViewer(s.verifier, s.sessionCookie)), s.viewer)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Service: "goflow",
		Version: s.version,
		Status:  "healthy",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// throttle spends one unit of the client's budget for the route. Redis
// failures let the request through.
func (s *Server) throttle(c *gin.Context) {
	if s.limiter == nil {
		return
	}
	scope := c.Param("type")
	if scope == "" {
		scope = "logout"
	}

	wait, err := s.limiter.Allow(c.Request.Context(), scope, c.ClientIP())
	switch {
	case err == nil:
	case errors.Is(err, rate.ErrRateLimited):
		c.Header("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
		errorJSON(c, http.StatusTooManyRequests, errRateLimited)
	default:
		s.logger.Warn("submission throttle unavailable", slog.String("scope", scope), log.Error(err))
	}
}

// providerContext forwards the browser cookies to the provider and relays
// the provider's Set-Cookie headers back on c's response.
func (s *Server) providerContext(c *gin.Context) context.Context {
	ctx := transport.WithCookies(c.Request.Context(), c.GetHeader("Cookie"))
	return transport.WithResponseHeader(ctx, c.Writer.Header())
}

// fromHTTP adapts net/http middleware to gin. The chain is aborted when
// the middleware answers the request itself.
func fromHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
