package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/analyst"
	"analyst-backend/internal/llm"
	"analyst-backend/internal/llm/gemini"
	"analyst-backend/internal/recovery"
	"analyst-backend/internal/scrape"
	"analyst-backend/internal/services/health"
	"analyst-backend/internal/shared/config"
	"analyst-backend/internal/shared/server/middleware"
	"analyst-backend/internal/shared/server/respond"
	"analyst-backend/internal/shared/telemetry"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// Model invocations are expensive, so the analysis endpoint is bucketed
// per client IP.
var analysisRateRule = middleware.RateLimitRule{Rate: 1, Burst: 5}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var model llm.Client
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			telemetry.Error("gemini.client_init_failed", map[string]any{"err": err.Error()})
		} else {
			model = client
		}
	} else {
		telemetry.Error("config.missing_api_key", map[string]any{"key": "GEMINI_API_KEY"})
	}

	svc := &analyst.Service{
		Scraper: scrape.New(
			scrape.WithTimeout(cfg.ScrapeTimeout),
			scrape.WithMaxRows(cfg.ScrapeMaxRows),
		),
		Model: model,
		GenCfg: llm.GenerationConfig{
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
		Recover: recovery.New(cfg.RawExcerptLimit),
	}
	handler := analyst.NewHandler(svc)

	healthSvc := health.NewService(Version)
	liveness := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	}
	r.GET("/", liveness)
	r.GET("/health", liveness)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{Rule: analysisRateRule}))
	handler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
