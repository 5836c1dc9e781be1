package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/comment-giveaway-api/internal/config"
	"github.com/comment-giveaway-api/internal/feed"
	"github.com/comment-giveaway-api/internal/giveaway"
	"github.com/comment-giveaway-api/internal/models"
	"github.com/comment-giveaway-api/internal/repository"
	"github.com/rs/zerolog"
)

// ErrExportNotFound is returned when an export id resolves to nothing
// (unknown or expired)
var ErrExportNotFound = errors.New("export not found")

// ErrExportNotDone is returned when an operation requires a successfully
// finished export
var ErrExportNotDone = errors.New("export has not finished successfully")

// ExportService defines the export pipeline operations
type ExportService interface {
	Create(ctx context.Context, owner, mediaID string) (*models.ExportRecord, error)
	Get(ctx context.Context, exportID string) (*models.ExportRecord, error)

	// Advance pushes the export forward for at most budget, checkpointing
	// after every page. Repeated calls are the resumption mechanism: no
	// background work happens between them.
	Advance(ctx context.Context, exportID string, budget time.Duration) (*models.ExportRecord, error)

	Comments(ctx context.Context, exportID string, offset, limit int) (*models.CommentSlice, error)
	StreamCSV(ctx context.Context, w io.Writer, exportID string) error
	ListByOwner(ctx context.Context, owner string) ([]*models.ExportRecord, error)

	// Snapshot recomputes the participant view from the authoritative
	// comment list
	Snapshot(ctx context.Context, exportID string) ([]models.Participant, error)
}

// GiveawayOutcome bundles a draw result with the frozen input facts a
// verifier needs to replay it
type GiveawayOutcome struct {
	MediaID       string           `json:"media_id"`
	PostCreatedAt string           `json:"post_created_at"`
	CommentsCount int              `json:"comments_count"`
	GiveawayDate  string           `json:"giveaway_date"`
	Options       giveaway.Options `json:"options"`
	Result        *giveaway.Result `json:"result"`
}

// GiveawayService runs draws against finished exports
type GiveawayService interface {
	// Run snapshots the export's participants and executes one draw.
	// giveawayDateISO is frozen by the caller; passing the value of a
	// previous outcome replays that draw exactly.
	Run(ctx context.Context, exportID, giveawayDateISO string, opts giveaway.Options) (*GiveawayOutcome, error)
}

// Services holds all service interfaces
type Services struct {
	Export   ExportService
	Giveaway GiveawayService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, feedClient feed.Client, cfg *config.Config, log zerolog.Logger) *Services {
	exportSvc := newExportService(repos, feedClient, &cfg.Export, log)
	return &Services{
		Export:   exportSvc,
		Giveaway: newGiveawayService(exportSvc, log),
	}
}
