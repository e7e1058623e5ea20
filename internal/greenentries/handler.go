package greenentries

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/reports/export"
)

// Handler handles HTTP requests for companies and green entries
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new green entries handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers company and green entry routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.GET("", h.listCompanies)
		companies.POST("", h.createCompany)
		companies.GET("/:id", h.getCompany)
		companies.POST("/:id/rcv/sync", h.syncRCV)
		companies.POST("/:id/green-entries/generate", h.generateEntries)
		companies.GET("/:id/green-entries/export", h.exportLedger)
		companies.GET("/:id/analytics", h.getAnalytics)
	}

	entries := router.Group("/green-entries")
	{
		entries.GET("", h.listEntries)
		entries.POST("", h.createEntry)
		entries.PATCH("/:id/status", h.updateEntryStatus)
	}
}

// listCompanies handles GET /api/v1/companies
func (h *Handler) listCompanies(c *gin.Context) {
	companies, err := h.service.ListCompanies(c.Request.Context(), h.getUserID(c))
	if err != nil {
		h.logger.Error("Failed to list companies", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, companies)
}

// createCompany handles POST /api/v1/companies
func (h *Handler) createCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.service.CreateCompany(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create company", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// getCompany handles GET /api/v1/companies/:id
func (h *Handler) getCompany(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	company, err := h.service.GetCompany(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get company", err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// syncRCV handles POST /api/v1/companies/:id/rcv/sync
func (h *Handler) syncRCV(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SyncRCV(c.Request.Context(), id, &req, h.getUserID(c))
	if err != nil {
		h.respondError(c, "Failed to sync RCV", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// generateEntries handles POST /api/v1/companies/:id/green-entries/generate
func (h *Handler) generateEntries(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateForCompany(c.Request.Context(), id, h.getUserID(c))
	if err != nil {
		h.respondError(c, "Failed to generate green entries", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// getAnalytics handles GET /api/v1/companies/:id/analytics
func (h *Handler) getAnalytics(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	report, err := h.service.Analytics(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to build analytics", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// exportLedger handles GET /api/v1/companies/:id/green-entries/export
func (h *Handler) exportLedger(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period := c.Query("period")
	data, err := h.service.ExportLedger(c.Request.Context(), id, period, format)
	if err != nil {
		h.respondError(c, "Failed to export ledger", err)
		return
	}

	base := "libro-verde"
	if period != "" {
		base += "-" + period
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(base)))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// listEntries handles GET /api/v1/green-entries
func (h *Handler) listEntries(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
			return
		}
		companyID = &id
	}

	entries, err := h.service.ListEntries(c.Request.Context(), companyID, h.getUserID(c))
	if err != nil {
		h.respondError(c, "Failed to list green entries", err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// createEntry handles POST /api/v1/green-entries
func (h *Handler) createEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.CreateEntry(c.Request.Context(), &req, h.getUserID(c))
	if err != nil {
		h.respondError(c, "Failed to create green entry", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateEntryStatus handles PATCH /api/v1/green-entries/:id/status
func (h *Handler) updateEntryStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateEntryStatus(c.Request.Context(), id, req.Status, h.getUserID(c)); err != nil {
		h.respondError(c, "Failed to update green entry status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and returned as 500.
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSIINotLinked), errors.Is(err, ErrNoTransactionData), errors.Is(err, ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) companyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
		return uuid.Nil, false
	}
	return id, true
}

// getUserID returns the caller from the X-User-ID header, or nil when absent.
// Authentication happens upstream.
func (h *Handler) getUserID(c *gin.Context) *string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return &id
	}
	return nil
}
