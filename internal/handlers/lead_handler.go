package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxImportBytes caps an uploaded lead list
const maxImportBytes = 10 << 20

// LeadHandler handles lead requests
type LeadHandler struct {
	tracker *services.TrackerService
	logger  *logrus.Logger
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(tracker *services.TrackerService, logger *logrus.Logger) *LeadHandler {
	return &LeadHandler{tracker: tracker, logger: logger}
}

// ListActive returns leads that have not been promoted
// GET /api/v1/leads
func (h *LeadHandler) ListActive(c *gin.Context) {
	leads, err := h.tracker.ListActiveLeads()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// Add adds a lead entered by hand
// POST /api/v1/leads
func (h *LeadHandler) Add(c *gin.Context) {
	var input models.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	lead, warnings, err := h.tracker.AddLead(input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"lead":     lead,
		"warnings": nonNil(warnings),
	})
}

// Update edits status, remark, appointment or salesperson
// PATCH /api/v1/leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	var patch models.LeadUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	lead, err := h.tracker.UpdateLead(c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Promote turns a lead into an onboarded leader
// POST /api/v1/leads/:id/promote
func (h *LeadHandler) Promote(c *gin.Context) {
	leader, err := h.tracker.PromoteLead(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lead promoted to onboarded leader",
		"leader":  leader,
	})
}

// Import appends leads from a CSV upload. Accepts a multipart "file" field or
// a raw text/csv body.
// POST /api/v1/leads/import
func (h *LeadHandler) Import(c *gin.Context) {
	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			respondBindError(c, fmt.Errorf("multipart field \"file\" is required: %w", err))
			return
		}
		f, err := file.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer f.Close()
		body = f
	} else {
		body = c.Request.Body
	}

	// One byte past the cap tells a full file from a truncated one
	data, err := io.ReadAll(io.LimitReader(body, maxImportBytes+1))
	if err != nil {
		respondBindError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if len(data) > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: fmt.Sprintf("lead list exceeds %d bytes", maxImportBytes),
			Code:    "FILE_TOO_LARGE",
		})
		return
	}

	result, err := h.tracker.ImportLeads(bytes.NewReader(data))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Export downloads the active leads
// GET /api/v1/leads/export?format=csv|xlsx
func (h *LeadHandler) Export(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.tracker.ExportLeads(&buf, format)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sendAttachment(c, filename, format, buf.Bytes())
}

func sendAttachment(c *gin.Context, filename string, format services.ExportFormat, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), data)
}
