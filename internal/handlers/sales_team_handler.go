package handlers

import (
	"net/http"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SalesTeamHandler handles sales team requests
type SalesTeamHandler struct {
	tracker *services.TrackerService
	logger  *logrus.Logger
}

// NewSalesTeamHandler creates a new SalesTeamHandler
func NewSalesTeamHandler(tracker *services.TrackerService, logger *logrus.Logger) *SalesTeamHandler {
	return &SalesTeamHandler{tracker: tracker, logger: logger}
}

// List returns the whole team
// GET /api/v1/sales-team
func (h *SalesTeamHandler) List(c *gin.Context) {
	team, err := h.tracker.ListSalespeople()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salespeople": team,
		"count":       len(team),
	})
}

// Add adds a salesperson
// POST /api/v1/sales-team
func (h *SalesTeamHandler) Add(c *gin.Context) {
	var input models.SalespersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	sp, warnings, err := h.tracker.AddSalesperson(input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"salesperson": sp,
		"warnings":    nonNil(warnings),
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
