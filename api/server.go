package api

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	limiter "github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/platform"
)

// Server exposes the processing pipeline and its read models over REST.
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	service   *platform.Service
	baselines *anomaly.Store
	history   *MessageStore
	validator *validator.Validate
}

// NewServer creates the API server. rateLimit uses the limiter format,
// e.g. "100-M" for 100 requests per minute per client IP.
func NewServer(
	logger *zap.Logger,
	service *platform.Service,
	baselines *anomaly.Store,
	history *MessageStore,
	rateLimit string,
) *Server {
	server := &Server{
		logger:    logger,
		service:   service,
		baselines: baselines,
		history:   history,
		validator: validator.New(),
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("fixsentry-api"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rate, err := limiter.NewRateFromFormatted(rateLimit)
	if err != nil {
		rate, _ = limiter.NewRateFromFormatted("100-M")
	}
	router.Use(ginlimiter.NewMiddleware(limiter.New(memory.NewStore(), rate)))

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))
		v1.GET("/health", s.healthCheck)

		v1.POST("/messages", s.ingestMessage)
		v1.GET("/messages", s.listMessages)
		v1.GET("/messages/:id", s.getMessage)

		v1.GET("/sessions", s.listSessions)
		v1.GET("/compliance", s.complianceStatus)
		v1.GET("/stats", s.platformStats)
	}
}
