package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/comment-giveaway-api/internal/models"
)

var csvHeader = []string{"comment_id", "username", "timestamp", "like_count", "parent_comment_id", "text"}

// newlineCollapser flattens line breaks inside quoted text fields to spaces
var newlineCollapser = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// StreamCSV renders the stored comment list as CSV in append order, one row
// per comment. Only exports that finished successfully can be rendered.
func (s *exportService) StreamCSV(ctx context.Context, w io.Writer, exportID string) error {
	rec, err := s.Get(ctx, exportID)
	if err != nil {
		return err
	}
	if rec.Status != models.ExportStatusDone {
		return ErrExportNotDone
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	count := 0
	err = s.repos.Export.StreamAll(ctx, exportID, func(c *models.NormalizedComment) error {
		parent := ""
		if c.ParentCommentID != nil {
			parent = *c.ParentCommentID
		}
		count++
		return writer.Write([]string{
			c.CommentID,
			c.Username,
			c.Timestamp,
			strconv.Itoa(c.LikeCount),
			parent,
			newlineCollapser.Replace(c.Text),
		})
	})
	if err != nil {
		return err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	s.log.Info().Str("export_id", exportID).Int("rows", count).Msg("CSV rendered")
	return nil
}
