package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, handler.opts.APIAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/sources/:name", handler.GetSource)

	api := r.Group("/api")
	{
		api.GET("/feed", handler.GetFeed)
		api.GET("/dates", handler.GetDates)
		api.GET("/navigation", handler.GetNavigation)
		api.GET("/search", handler.GetSearch)
		api.GET("/preview", handler.GetPreview)
		api.GET("/curated", handler.GetCurated)
		api.GET("/curated/document", handler.GetCuratedDocument)
		api.GET("/curated/rss", handler.GetCuratedRSS)
		api.GET("/sources", handler.APIListSources)
	}

	mutating := r.Group("/api")
	if apiAccessKey != "" {
		mutating.Use(authMiddleware(apiAccessKey))
		slog.Info("Mutating API endpoints require authentication")
	} else {
		slog.Warn("Mutating API endpoints are open (API_ACCESS_KEY not set)")
	}
	{
		mutating.POST("/navigation/select", handler.APISelectDate)
		mutating.POST("/navigation/:direction", handler.APINavigate)
		mutating.POST("/search", handler.APISetSearch)
		mutating.POST("/filters/toggle", handler.APIToggleCategory)
		mutating.DELETE("/filters", handler.APIShowAllCategories)
		mutating.POST("/curated", handler.APIAddCurated)
		mutating.DELETE("/curated", handler.APIClearCurated)
		mutating.DELETE("/curated/:index", handler.APIRemoveCurated)
		mutating.POST("/curated/save", handler.APISaveCurated)
		mutating.POST("/curated/import", handler.APIImportCurated)
		mutating.POST("/sources/:name/reload", handler.APIReloadSource)
	}

	r.GET("/", func(c *gin.Context) {
		auth := ""
		if apiAccessKey != "" {
			auth = " (requires X-API-Key header)"
		}

		endpoints := map[string]string{
			"feed":       "/api/feed?date=<YYYY-MM-DD|today>",
			"dates":      "/api/dates",
			"navigation": "/api/navigation?date=<YYYY-MM-DD|today>",
			"navigate":   "/api/navigation/<previous|next|today|select> (POST)" + auth,
			"search":     "/api/search?q=<term>&category=<title>",
			"curated":    "/api/curated (GET, POST, DELETE)",
			"document":   "/api/curated/document",
			"rss":        "/api/curated/rss",
			"import":     "/api/curated/import (POST)" + auth,
			"preview":    "/api/preview?url=<page-url>",
			"sources":    "/api/sources",
			"source":     "/sources/<name>",
			"health":     "/health",
			"metrics":    "/metrics",
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "News Browser",
			"version":     handler.opts.Version,
			"description": "Daily news digest browser with archive navigation and curation",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
