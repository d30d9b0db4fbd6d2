package http

import (
	"context"
	"net/http"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/jmehdipour/overdue-notifier/internal/http/middleware"
	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

// Deps are the collaborators the routes need; the caller owns their lifecycle.
type Deps struct {
	Hook        AfterSubmitter
	Diagnostics repository.DiagnosticsRepository
	Redis       redis.Cmdable // nil disables rate limiting
	Log         *zap.Logger
}

func NewServer(cfg config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.HTTP.APIKeys)
	var limiter middleware.Limiter
	if deps.Redis != nil && cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRedisLimiter(deps.Redis, "rl:key:", time.Second, cfg.RateLimit.RPS)
	}
	rlMW := middleware.RateLimitMiddleware(limiter, deps.Log)

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/hooks/after-submit", afterSubmitHandler(deps.Hook))
	if deps.Diagnostics != nil {
		v1.GET("/diagnostics", listDiagnosticsHandler(deps.Diagnostics))
	}

	return &Server{e: e, log: deps.Log}
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
