// Package httpapi wires the HTTP transport (Gin) to the cafe services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, rate limiting, and the
// api-key gate on destructive routes.
package httpapi

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/docs"
	"github.com/tbourn/go-cafe-api/internal/config"
	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/http/handlers"
	"github.com/tbourn/go-cafe-api/internal/http/middleware"
	"github.com/tbourn/go-cafe-api/internal/repo"
	"github.com/tbourn/go-cafe-api/internal/services"
)

//go:embed templates/index.html
var templatesFS embed.FS

// cafeRepoShim adapts the repository free functions to the services.CafeRepo
// interface expected by both cafe services.
type cafeRepoShim struct{}

// ListCafes proxies repo.ListCafes.
func (cafeRepoShim) ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error) {
	return repo.ListCafes(ctx, db)
}

// GetCafe proxies repo.GetCafe.
func (cafeRepoShim) GetCafe(ctx context.Context, db *gorm.DB, id int) (*domain.Cafe, error) {
	return repo.GetCafe(ctx, db, id)
}

// CreateCafe proxies repo.CreateCafe.
func (cafeRepoShim) CreateCafe(ctx context.Context, db *gorm.DB, c *domain.Cafe) error {
	return repo.CreateCafe(ctx, db, c)
}

// UpdateCafePrice proxies repo.UpdateCafePrice.
func (cafeRepoShim) UpdateCafePrice(ctx context.Context, db *gorm.DB, id int, price *string) error {
	return repo.UpdateCafePrice(ctx, db, id, price)
}

// DeleteCafe proxies repo.DeleteCafe.
func (cafeRepoShim) DeleteCafe(ctx context.Context, db *gorm.DB, id int) error {
	return repo.DeleteCafe(ctx, db, id)
}

// idemStore backs middleware.IdempotencyStore with the idempotency table.
type idemStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idemStore) Lookup(ctx context.Context, path, key string, now time.Time) (*middleware.StoredResponse, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, path, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &middleware.StoredResponse{Status: rec.Status, Body: rec.Body}, nil
}

// Save treats a concurrent insert of the same key as success; the first
// writer's response is the one replayed.
func (s idemStore) Save(ctx context.Context, path, key string, resp middleware.StoredResponse) error {
	_, err := repo.CreateIdempotency(ctx, s.db, path, key, resp.Status, resp.Body, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability, idempotency and rate limiting, CORS and security
// headers, health and metrics, optional Swagger UI, and the cafe routes
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger (redacting unless disabled)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (skips /metrics, which promhttp compresses itself)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per client IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/index.html")))

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 8) Idempotency validation (before rate limiting)
	store := idemStore{db: db, ttl: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen:     200,
		Authorized: middleware.APIKeyMatches(cfg.APIKey),
	}, store))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotentReplay}
	methods := []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:            cfg.Security.EnableHSTS,
		HSTSMaxAge:            cfg.Security.HSTSMaxAge,
		EnablePolicy:          true,
		ContentSecurityPolicy: middleware.DefaultCSP,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.MsgRouteNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.MsgMethodNotAllowed)
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
			ginSwagger.DefaultModelsExpandDepth(0),
		))
	}

	// Dependency injection: services ← repo/db
	h := handlers.New(
		services.NewQueryService(db, cafeRepoShim{}),
		services.NewMutationService(db, cafeRepoShim{}),
	)
	requireKey := middleware.APIKey(cfg.APIKey)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/", h.Home)
		api.GET("/random", h.Random)
		api.GET("/all", h.All)
		api.GET("/search", h.Search)

		api.POST("/add", requireKey, middleware.IdempotentReplay(store), h.Add)
		api.PATCH("/update-price/:cafe_id", h.UpdatePrice)
		api.DELETE("/report-closed/:cafe_id", requireKey, h.ReportClosed)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
