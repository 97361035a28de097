package handlers

import (
	"net/http"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckInHandler handles daily check-in requests
type CheckInHandler struct {
	tracker *services.TrackerService
	logger  *logrus.Logger
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(tracker *services.TrackerService, logger *logrus.Logger) *CheckInHandler {
	return &CheckInHandler{tracker: tracker, logger: logger}
}

// CheckIn records today's check-in
// POST /api/v1/check-ins
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.tracker.CheckIn(req.SalespersonName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListForDate lists check-ins for ?date=YYYY-MM-DD (default today)
// GET /api/v1/check-ins
func (h *CheckInHandler) ListForDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.tracker.Today()
	}

	records, err := h.tracker.CheckInsForDate(date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      date,
		"check_ins": records,
		"count":     len(records),
	})
}
