package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/packing"
)

const defaultForecastDays = 7

// Handler wires the HTTP transport to domain services.
type Handler struct {
	packingSvc  packing.Service
	forecastSvc forecast.Service
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(packingSvc packing.Service, forecastSvc forecast.Service, logger *slog.Logger) *Handler {
	return &Handler{
		packingSvc:  packingSvc,
		forecastSvc: forecastSvc,
		logger:      logger.With("component", "http.handler"),
	}
}

// CreatePackingList builds a packing list for the submitted trip.
func (h *Handler) CreatePackingList(c *gin.Context) {
	var req packing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.packingSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "packing_list_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetForecast returns the normalized daily forecast for a destination.
func (h *Handler) GetForecast(c *gin.Context) {
	days := defaultForecastDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "days must be an integer", err))
			return
		}
		days = parsed
	}

	fc, err := h.forecastSvc.Forecast(c.Request.Context(), forecast.Query{
		Destination: c.Query("destination"),
		StartDate:   c.Query("startDate"),
		Days:        days,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "forecast_failed"))
		return
	}

	c.JSON(http.StatusOK, fc)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
