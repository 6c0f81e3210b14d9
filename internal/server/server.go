package server

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swapstats/revenue-api/internal/aggregate"
	"github.com/swapstats/revenue-api/internal/fees"
)

// RevenueHandler serves the affiliate revenue endpoints.
type RevenueHandler struct {
	aggregator *aggregate.Service
}

// NewRevenueHandler builds the handler over the aggregator.
func NewRevenueHandler(aggregator *aggregate.Service) *RevenueHandler {
	return &RevenueHandler{aggregator: aggregator}
}

// InitializeRoutes wires middleware and the API surface onto the router.
func InitializeRoutes(router *gin.Engine, revenueHandler *RevenueHandler) {
	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		affiliate := v1.Group("/affiliate")
		{
			affiliate.GET("/revenue", revenueHandler.GetRevenue)
		}
	}
}

// GetRevenue returns the aggregated affiliate revenue for a date range.
// Dates are YYYY-MM-DD; the end date is inclusive through 23:59:59 UTC.
func (h *RevenueHandler) GetRevenue(c *gin.Context) {
	startParam := c.Query("startDate")
	endParam := c.Query("endDate")
	if startParam == "" || endParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
		return
	}

	startDay, err := time.ParseInLocation(fees.DateFormat, startParam, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be formatted as YYYY-MM-DD"})
		return
	}
	endDay, err := time.ParseInLocation(fees.DateFormat, endParam, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be formatted as YYYY-MM-DD"})
		return
	}
	if endDay.Before(startDay) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must not precede startDate"})
		return
	}

	startTimestamp := startDay.Unix()
	endTimestamp := endDay.Add(24*time.Hour - time.Second).Unix()

	response, err := h.aggregator.Revenue(c.Request.Context(), startTimestamp, endTimestamp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate revenue"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		// Split and trim the origins
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	// Get allowed methods from environment variable
	methodsEnv := os.Getenv("CORS_ALLOWED_METHODS")
	if methodsEnv == "" {
		corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	} else {
		methods := strings.Split(methodsEnv, ",")
		for i, method := range methods {
			methods[i] = strings.TrimSpace(method)
		}
		corsConfig.AllowMethods = methods
	}

	// Get allowed headers from environment variable
	headersEnv := os.Getenv("CORS_ALLOWED_HEADERS")
	if headersEnv == "" {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	} else {
		headers := strings.Split(headersEnv, ",")
		for i, header := range headers {
			headers[i] = strings.TrimSpace(header)
		}
		corsConfig.AllowHeaders = headers
	}

	// Set credentials allowed
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
