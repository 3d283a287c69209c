package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxWeeks      = 52
	maxWindowDays = 365
)

// DashboardSource produces the dashboard statistics.
type DashboardSource interface {
	Dashboard(ctx context.Context, q services.StatisticsQuery) (*services.DashboardStatistics, error)
}

// ProjectTypeSource lists the project types present in the submissions.
type ProjectTypeSource interface {
	ProjectTypes(ctx context.Context) ([]models.CategoryCount, error)
}

type StatisticsHandler struct {
	stats        DashboardSource
	projectTypes ProjectTypeSource
	logger       *zap.Logger
}

func NewStatisticsHandler(stats DashboardSource, projectTypes ProjectTypeSource, logger *zap.Logger) *StatisticsHandler {
	return &StatisticsHandler{stats: stats, projectTypes: projectTypes, logger: logger}
}

// GetStatistics godoc
// @Summary Get submission statistics for the dashboard
// @Description Totals per status, response rate, new submissions in the window, weekly series, project type and budget breakdowns
// @Tags statistics
// @Security ApiKeyAuth
// @Produce json
// @Param now query string false "Reference time (RFC3339); defaults to the server clock"
// @Param weeks query int false "Weeks in the series" default(8)
// @Param windowDays query int false "Days counted as new" default(7)
// @Param period query string false "Shorthand for windowDays: 7d, 30d, 90d"
// @Success 200 {object} services.DashboardStatistics
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	q, ok := parseStatisticsQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.stats.Dashboard(ctx, q)
	if err != nil {
		storageError(c, h.logger, "compute statistics", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetProjectTypes godoc
// @Summary Project types seen in submissions, most frequent first
// @Tags statistics
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.CategoryCount
// @Failure 500 {object} models.ErrorResponse
// @Router /statistics/project-types [get]
func (h *StatisticsHandler) GetProjectTypes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	types, err := h.projectTypes.ProjectTypes(ctx)
	if err != nil {
		storageError(c, h.logger, "load project types", err)
		return
	}
	if types == nil {
		types = []models.CategoryCount{}
	}
	c.JSON(http.StatusOK, types)
}

func parseStatisticsQuery(c *gin.Context) (services.StatisticsQuery, bool) {
	var q services.StatisticsQuery

	if v := strings.TrimSpace(c.Query("now")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "now must be an RFC3339 timestamp")
			return q, false
		}
		q.Now = t.UTC()
	}

	switch c.Query("period") {
	case "":
	case "7d":
		q.WindowDays = 7
	case "30d":
		q.WindowDays = 30
	case "90d":
		q.WindowDays = 90
	default:
		respondError(c, http.StatusBadRequest, "validation_error", "period must be 7d, 30d or 90d")
		return q, false
	}

	var ok bool
	if q.Weeks, ok = positiveQuery(c, "weeks", maxWeeks, q.Weeks); !ok {
		return q, false
	}
	if q.WindowDays, ok = positiveQuery(c, "windowDays", maxWindowDays, q.WindowDays); !ok {
		return q, false
	}
	return q, true
}

// positiveQuery reads an integer in [1, limit]; fallback is returned when the key is absent.
func positiveQuery(c *gin.Context, key string, limit, fallback int) (int, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > limit {
		respondError(c, http.StatusBadRequest, "validation_error", key+" must be between 1 and "+strconv.Itoa(limit))
		return 0, false
	}
	return n, true
}
