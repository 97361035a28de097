package handlers

import (
	"bytes"
	"net/http"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LeaderHandler handles onboarded leader requests
type LeaderHandler struct {
	tracker *services.TrackerService
	logger  *logrus.Logger
}

// NewLeaderHandler creates a new LeaderHandler
func NewLeaderHandler(tracker *services.TrackerService, logger *logrus.Logger) *LeaderHandler {
	return &LeaderHandler{tracker: tracker, logger: logger}
}

// List returns all leaders with their follow-up flag
// GET /api/v1/leaders
func (h *LeaderHandler) List(c *gin.Context) {
	leaders, err := h.tracker.ListLeaders()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaders": leaders,
		"count":   len(leaders),
	})
}

// FollowUps returns leaders that need a follow-up call
// GET /api/v1/leaders/follow-ups
func (h *LeaderHandler) FollowUps(c *gin.Context) {
	leaders, err := h.tracker.FollowUps()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaders": leaders,
		"count":   len(leaders),
	})
}

// Update edits ordered, remark or salesperson
// PATCH /api/v1/leaders/:id
func (h *LeaderHandler) Update(c *gin.Context) {
	var patch models.LeaderUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	leader, err := h.tracker.UpdateLeader(c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, leader)
}

// Export downloads every onboarded leader
// GET /api/v1/leaders/export?format=csv|xlsx
func (h *LeaderHandler) Export(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.tracker.ExportLeaders(&buf, format)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sendAttachment(c, filename, format, buf.Bytes())
}
