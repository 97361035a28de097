package handlers

import (
	"net/http"
	"strconv"

	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxRecentWeeks bounds the week picker
const maxRecentWeeks = 104

// DashboardHandler serves the performance dashboard
type DashboardHandler struct {
	tracker *services.TrackerService
	logger  *logrus.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(tracker *services.TrackerService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{tracker: tracker, logger: logger}
}

// Weeks returns the recent-weeks picker
// GET /api/v1/dashboard/weeks?count=
func (h *DashboardHandler) Weeks(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecentWeeks {
			respondError(c, h.logger, &services.ValidationError{
				Field:   "count",
				Message: "must be an integer between 1 and " + strconv.Itoa(maxRecentWeeks),
			})
			return
		}
		count = n
	}

	c.JSON(http.StatusOK, gin.H{
		"weeks": h.tracker.RecentWeeks(count),
	})
}

// Performance returns the weekly dashboard
// GET /api/v1/dashboard/performance?week=YYYY-MM-DD&salesperson=
func (h *DashboardHandler) Performance(c *gin.Context) {
	result, err := h.tracker.WeeklyPerformance(c.Query("week"), c.Query("salesperson"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Cohorts returns the all-time cohort conversion summary
// GET /api/v1/dashboard/cohorts
func (h *DashboardHandler) Cohorts(c *gin.Context) {
	insights, err := h.tracker.CohortInsights()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cohorts": insights,
	})
}
