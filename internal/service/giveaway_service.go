package service

import (
	"context"
	"time"

	"github.com/comment-giveaway-api/internal/giveaway"
	"github.com/comment-giveaway-api/internal/models"
	"github.com/rs/zerolog"
)

// giveawayService assembles a frozen engine input from a finished export
// and delegates the draw to the pure engine
type giveawayService struct {
	exports ExportService
	log     zerolog.Logger
}

// newGiveawayService creates a new GiveawayService
func newGiveawayService(exports ExportService, log zerolog.Logger) *giveawayService {
	return &giveawayService{
		exports: exports,
		log:     log.With().Str("service", "giveaway").Logger(),
	}
}

// Run snapshots the export's participants and executes one deterministic
// draw. When giveawayDateISO is empty, the draw date is stamped once here
// and echoed in the outcome so later re-verification runs can pass it back
// in unchanged.
func (s *giveawayService) Run(ctx context.Context, exportID, giveawayDateISO string, opts giveaway.Options) (*GiveawayOutcome, error) {
	rec, err := s.exports.Get(ctx, exportID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.ExportStatusDone {
		return nil, ErrExportNotDone
	}

	participants, err := s.exports.Snapshot(ctx, exportID)
	if err != nil {
		return nil, err
	}

	if giveawayDateISO == "" {
		giveawayDateISO = time.Now().UTC().Format(time.RFC3339)
	}

	input := &giveaway.Input{
		MediaID:          rec.Post.MediaID,
		PostCreatedAtISO: rec.Post.CreatedAt,
		CommentsCount:    rec.Post.CommentsCountAtStart,
		GiveawayDateISO:  giveawayDateISO,
		Participants:     participants,
		Options:          opts,
	}

	result, err := giveaway.Run(input)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("export_id", exportID).
		Int("participants", result.FilteredParticipantCount).
		Int("winners", opts.WinnerCount).
		Str("participants_hash", result.ParticipantsHash).
		Msg("Giveaway executed")

	return &GiveawayOutcome{
		MediaID:       input.MediaID,
		PostCreatedAt: input.PostCreatedAtISO,
		CommentsCount: input.CommentsCount,
		GiveawayDate:  input.GiveawayDateISO,
		Options:       opts,
		Result:        result,
	}, nil
}
