package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/api/handlers"
	"github.com/andresuchdata/replenish-planner/internal/api/middleware"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Planner *service.PlannerService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Planner != nil {
		planner := handlers.NewPlannerHandler(services.Planner)

		apiGroup.GET("/tools", planner.ListTools)

		replenishmentGroup := apiGroup.Group("/replenishment")
		{
			replenishmentGroup.POST("/evaluate", planner.Evaluate)
			replenishmentGroup.POST("/compare", planner.Compare)
			replenishmentGroup.POST("/plan", planner.Plan)
			replenishmentGroup.GET("/plan/skus", planner.PlanStored)
			replenishmentGroup.DELETE("/plan/cache", planner.InvalidatePlans)
		}

		apiGroup.POST("/cashflow/evaluate", planner.EvaluateCashflow)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
