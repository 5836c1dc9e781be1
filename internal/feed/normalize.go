package feed

import (
	"github.com/comment-giveaway-api/internal/models"
)

// Normalize maps a raw feed record into the canonical comment shape.
// Pure function: missing like counts default to 0, missing text to the
// empty string. The parent comment id is reserved for future threading
// data and stays nil.
func Normalize(raw RawComment) models.NormalizedComment {
	return models.NormalizedComment{
		CommentID:       raw.ID,
		UserID:          raw.From.ID,
		Username:        raw.From.Username,
		Timestamp:       raw.Timestamp,
		LikeCount:       raw.LikeCount,
		ParentCommentID: nil,
		Text:            raw.Text,
	}
}

// NormalizeAll maps a full page of raw records in delivery order
func NormalizeAll(raws []RawComment) []models.NormalizedComment {
	comments := make([]models.NormalizedComment, 0, len(raws))
	for _, raw := range raws {
		comments = append(comments, Normalize(raw))
	}
	return comments
}
