package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comment-giveaway-api/internal/config"
	"github.com/comment-giveaway-api/internal/feed"
	"github.com/comment-giveaway-api/internal/models"
	"github.com/comment-giveaway-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// exportFailedCode is the structured error code recorded on failed exports
const exportFailedCode = "EXPORT_FAILED"

// exportService is the concrete implementation of ExportService.
// Advance is a pull-based, externally clocked state machine: progress only
// happens while a caller is invoking it, and every page is checkpointed
// before the next fetch so an interrupted call resumes cleanly.
type exportService struct {
	repos *repository.Repositories
	feed  feed.Client
	cfg   *config.ExportConfig
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, feedClient feed.Client, cfg *config.ExportConfig, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		feed:  feedClient,
		cfg:   cfg,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// Create registers a new pending export for the given post
func (s *exportService) Create(ctx context.Context, owner, mediaID string) (*models.ExportRecord, error) {
	rec := &models.ExportRecord{
		ID:        uuid.New().String(),
		Owner:     owner,
		Status:    models.ExportStatusPending,
		Post:      models.PostRef{MediaID: mediaID},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repos.Export.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create export: %w", err)
	}

	s.log.Info().
		Str("export_id", rec.ID).
		Str("media_id", mediaID).
		Msg("Export created")
	return rec, nil
}

// Get retrieves an export record
func (s *exportService) Get(ctx context.Context, exportID string) (*models.ExportRecord, error) {
	rec, err := s.repos.Export.Get(ctx, exportID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrExportNotFound
	}
	return rec, nil
}

// Advance runs the ingestion loop until the time budget is spent, the feed
// is exhausted, or the hard cap is reached. Each loop iteration fetches one
// page, appends it with dedup, and persists cursor and counters before the
// next fetch.
func (s *exportService) Advance(ctx context.Context, exportID string, budget time.Duration) (*models.ExportRecord, error) {
	rec, err := s.Get(ctx, exportID)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(budget)

	if rec.Status == models.ExportStatusPending {
		if err := s.start(ctx, rec); err != nil {
			return s.fail(ctx, rec, err)
		}
	}

	for rec.Status == models.ExportStatusRunning &&
		rec.Counters.Appended < s.cfg.HardCap &&
		time.Now().Before(deadline) {

		page, err := s.feed.FetchPage(ctx, rec.Post.MediaID, rec.Paging.AfterCursor)
		if err != nil {
			return s.fail(ctx, rec, err)
		}

		batch := feed.NormalizeAll(page.Items)

		// Clamp so appended never exceeds the hard cap
		if room := s.cfg.HardCap - rec.Counters.Appended; len(batch) > room {
			batch = batch[:room]
		}

		appended, duplicates, err := s.repos.Export.AppendComments(ctx, rec.ID, batch)
		if err != nil {
			return s.fail(ctx, rec, err)
		}

		userIDs := make([]string, 0, len(batch))
		for i := range batch {
			userIDs = append(userIDs, batch[i].UserID)
		}
		uniqUsers, err := s.repos.Export.AddUsers(ctx, rec.ID, userIDs)
		if err != nil {
			return s.fail(ctx, rec, err)
		}

		rec.Counters.Appended += appended
		rec.Counters.SkippedDuplicates += duplicates
		rec.Counters.UniqUsers = uniqUsers
		rec.ListLength += appended
		rec.Paging.AfterCursor = page.NextCursor

		if page.NextCursor == "" || rec.Counters.Appended >= s.cfg.HardCap {
			rec.Status = models.ExportStatusCSVPending
		}

		// Checkpoint: cursor, counters, and length land together so a
		// crash here resumes at the next page
		if err := s.repos.Export.Save(ctx, rec); err != nil {
			return s.fail(ctx, rec, err)
		}

		s.log.Debug().
			Str("export_id", rec.ID).
			Int("appended", rec.Counters.Appended).
			Int("duplicates", rec.Counters.SkippedDuplicates).
			Msg("Page ingested")
	}

	if rec.Status == models.ExportStatusCSVPending {
		if err := s.finish(ctx, rec); err != nil {
			return s.fail(ctx, rec, err)
		}
	}

	return rec, nil
}

// start moves pending → running and records post-level facts
func (s *exportService) start(ctx context.Context, rec *models.ExportRecord) error {
	media, err := s.feed.FetchMedia(ctx, rec.Post.MediaID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rec.Status = models.ExportStatusRunning
	rec.StartedAt = &now
	rec.Post.CreatedAt = media.Timestamp
	rec.Post.CommentsCountAtStart = media.CommentsCount
	return s.repos.Export.Save(ctx, rec)
}

// finish moves csv_pending → done. File generation would hook in here; it
// is a no-op because CSV is rendered on demand from the stored list.
func (s *exportService) finish(ctx context.Context, rec *models.ExportRecord) error {
	now := time.Now().UTC()
	rec.Status = models.ExportStatusDone
	rec.FinishedAt = &now
	if err := s.repos.Export.Save(ctx, rec); err != nil {
		return err
	}

	s.log.Info().
		Str("export_id", rec.ID).
		Int("appended", rec.Counters.Appended).
		Int("uniq_users", rec.Counters.UniqUsers).
		Msg("Export completed")
	return nil
}

// fail records the terminal failure on the record and surfaces the cause
// to the caller
func (s *exportService) fail(ctx context.Context, rec *models.ExportRecord, cause error) (*models.ExportRecord, error) {
	rec.Status = models.ExportStatusFailed
	rec.Counters.Failed++
	rec.Error = &models.ExportError{
		Code:    exportFailedCode,
		Message: cause.Error(),
	}
	if saveErr := s.repos.Export.Save(ctx, rec); saveErr != nil {
		s.log.Error().Err(saveErr).Str("export_id", rec.ID).Msg("Could not persist failure state")
	}

	s.log.Error().Err(cause).Str("export_id", rec.ID).Msg("Export failed")
	return rec, fmt.Errorf("export %s failed: %w", rec.ID, cause)
}

// Comments returns one slice of the stored list. NextOffset is set only
// when more items remain past this slice.
func (s *exportService) Comments(ctx context.Context, exportID string, offset, limit int) (*models.CommentSlice, error) {
	if _, err := s.Get(ctx, exportID); err != nil {
		return nil, err
	}

	items, err := s.repos.Export.Comments(ctx, exportID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Export.CommentCount(ctx, exportID)
	if err != nil {
		return nil, err
	}

	slice := &models.CommentSlice{Items: items}
	if next := offset + len(items); len(items) > 0 && next < total {
		slice.NextOffset = &next
	}
	return slice, nil
}

// ListByOwner returns the owner's exports, most recent first
func (s *exportService) ListByOwner(ctx context.Context, owner string) ([]*models.ExportRecord, error) {
	return s.repos.Export.ListByOwner(ctx, owner, 50)
}

// Snapshot reduces the authoritative comment list to the participant view.
// Never cached: always recomputed from the stored list.
func (s *exportService) Snapshot(ctx context.Context, exportID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.repos.Export.StreamAll(ctx, exportID, func(c *models.NormalizedComment) error {
		participants = append(participants, c.AsParticipant())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participants, nil
}
