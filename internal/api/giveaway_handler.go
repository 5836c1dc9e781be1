package api

import (
	"errors"
	"net/http"

	"github.com/comment-giveaway-api/internal/giveaway"
	"github.com/comment-giveaway-api/internal/service"
	"github.com/comment-giveaway-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// GiveawayHandler handles winner selection endpoints
type GiveawayHandler struct {
	services *service.Services
	exports  *ExportHandler
	log      zerolog.Logger
}

// NewGiveawayHandler creates a new GiveawayHandler
func NewGiveawayHandler(services *service.Services, exports *ExportHandler, log zerolog.Logger) *GiveawayHandler {
	return &GiveawayHandler{
		services: services,
		exports:  exports,
		log:      log.With().Str("handler", "giveaway").Logger(),
	}
}

// RunGiveaway handles POST /v1/exports/:export_id/giveaway.
// An omitted giveaway_date is stamped once server-side; passing the date
// echoed by a previous response replays that draw exactly.
func (h *GiveawayHandler) RunGiveaway(c *gin.Context) {
	rec, ok := h.exports.ownedExport(c)
	if !ok {
		return
	}

	var req struct {
		WinnerCount   int    `json:"winner_count"`
		UniqueUsers   bool   `json:"unique_users"`
		UniqueWinners bool   `json:"unique_winners"`
		GiveawayDate  string `json:"giveaway_date,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := giveaway.Options{
		WinnerCount:   req.WinnerCount,
		UniqueUsers:   req.UniqueUsers,
		UniqueWinners: req.UniqueWinners,
	}
	var errs []validation.ValidationError
	errs = append(errs, validation.ValidateGiveawayOptions(opts)...)
	errs = append(errs, validation.ValidateGiveawayDate(req.GiveawayDate)...)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	outcome, err := h.services.Giveaway.Run(c.Request.Context(), rec.ID, req.GiveawayDate, opts)
	if errors.Is(err, service.ErrExportNotDone) {
		c.JSON(http.StatusConflict, gin.H{"error": "export has not finished yet"})
		return
	}
	if err != nil {
		// Engine errors are user-correctable (winner count vs participants,
		// empty set after filtering)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
