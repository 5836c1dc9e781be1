package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/comment-giveaway-api/internal/config"
	"github.com/comment-giveaway-api/internal/models"
	"github.com/comment-giveaway-api/internal/service"
	"github.com/comment-giveaway-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ownerHeader carries the caller identity resolved by the upstream auth
// layer. Handlers only compare it against the record owner.
const ownerHeader = "X-Owner-ID"

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// CreateExport handles POST /v1/exports
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req struct {
		MediaID string `json:"media_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	owner := c.GetHeader(ownerHeader)
	if errs := validation.ValidateCreateExport(owner, req.MediaID); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	rec, err := h.services.Export.Create(c.Request.Context(), owner, req.MediaID)
	if err != nil {
		h.log.Error().Err(err).Msg("Create export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create export"})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ListExports handles GET /v1/exports
func (h *ExportHandler) ListExports(c *gin.Context) {
	owner := c.GetHeader(ownerHeader)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ownerHeader + " header is required"})
		return
	}

	records, err := h.services.Export.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Msg("List exports failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list exports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exports": records})
}

// GetExport handles GET /v1/exports/:export_id
func (h *ExportHandler) GetExport(c *gin.Context) {
	rec, ok := h.ownedExport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AdvanceExport handles POST /v1/exports/:export_id/advance.
// One budgeted unit of work: clients poll this endpoint until the record
// reports a terminal status.
func (h *ExportHandler) AdvanceExport(c *gin.Context) {
	rec, ok := h.ownedExport(c)
	if !ok {
		return
	}

	budget := h.cfg.Export.DefaultBudget
	if raw := c.Query("budget_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget_ms must be an integer"})
			return
		}
		budget = time.Duration(ms) * time.Millisecond
	}
	if errs := validation.ValidateAdvanceBudget(budget, h.cfg.Export.MaxBudget); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	rec, err := h.services.Export.Advance(c.Request.Context(), rec.ID, budget)
	if err != nil {
		// The record carries the structured failure; surface both
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "export": rec})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetComments handles GET /v1/exports/:export_id/comments
func (h *ExportHandler) GetComments(c *gin.Context) {
	rec, ok := h.ownedExport(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if errs := validation.ValidateCommentSliceParams(offset, limit); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	slice, err := h.services.Export.Comments(c.Request.Context(), rec.ID, offset, limit)
	if err != nil {
		h.log.Error().Err(err).Str("export_id", rec.ID).Msg("Comment read-back failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read comments"})
		return
	}

	c.JSON(http.StatusOK, slice)
}

// DownloadCSV handles GET /v1/exports/:export_id/csv
func (h *ExportHandler) DownloadCSV(c *gin.Context) {
	rec, ok := h.ownedExport(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=comments-"+rec.ID+".csv")

	err := h.services.Export.StreamCSV(c.Request.Context(), c.Writer, rec.ID)
	if errors.Is(err, service.ErrExportNotDone) {
		c.JSON(http.StatusConflict, gin.H{"error": "export has not finished yet"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("export_id", rec.ID).Msg("CSV download failed")
		// Streaming may already have started; nothing more to send
		return
	}
}

// ownedExport loads the export and enforces ownership. Missing and
// foreign exports are indistinguishable to the caller.
func (h *ExportHandler) ownedExport(c *gin.Context) (*models.ExportRecord, bool) {
	owner := c.GetHeader(ownerHeader)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ownerHeader + " header is required"})
		return nil, false
	}

	rec, err := h.services.Export.Get(c.Request.Context(), c.Param("export_id"))
	if errors.Is(err, service.ErrExportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "export not found"})
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Export lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load export"})
		return nil, false
	}
	if rec.Owner != owner {
		c.JSON(http.StatusNotFound, gin.H{"error": "export not found"})
		return nil, false
	}
	return rec, true
}
