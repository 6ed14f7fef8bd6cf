package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"attendance-report/config"
	"attendance-report/internal/api/handler"
	"attendance-report/internal/api/middleware"
	"attendance-report/internal/model"
	"attendance-report/pkg/jwt"
	"attendance-report/pkg/metrics"
	"attendance-report/pkg/redis"
)

// Setup builds the gin engine. rdb and m may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	{
		authorized.GET("/auth/me", h.User.GetCurrentUser)

		reports := authorized.Group("/reports")
		reports.Use(
			middleware.RoleAuth(model.RoleTeacher),
			middleware.RateLimit(rdb, cfg.Report.RateLimit, cfg.Report.RateLimitWindow),
			middleware.Timeout(cfg.Report.LoadTimeout),
		)
		{
			reports.GET("/students", h.Report.ListStudents)
			reports.GET("/filters", h.Report.Filters)
			reports.GET("/export", h.Report.Export)
		}
	}

	return r
}
