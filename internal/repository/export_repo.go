package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/comment-giveaway-api/internal/models"
	"github.com/comment-giveaway-api/internal/store"
)

const streamChunkSize = 500

// exportRepo is the concrete implementation of ExportRepository
type exportRepo struct {
	store     store.Store
	retention time.Duration
}

// NewExportRepo creates a new export repository
func NewExportRepo(s store.Store, retention time.Duration) ExportRepository {
	return &exportRepo{store: s, retention: retention}
}

func recordKey(id string) string   { return "export:" + id }
func commentsKey(id string) string { return "export:" + id + ":comments" }
func dedupKey(id string) string    { return "export:" + id + ":commentids" }
func usersKey(id string) string    { return "export:" + id + ":users" }
func ownerKey(owner string) string { return "owner:" + owner + ":exports" }

// Create persists a fresh export record and registers it in the owner's
// recency index
func (r *exportRepo) Create(ctx context.Context, rec *models.ExportRecord) error {
	if err := r.Save(ctx, rec); err != nil {
		return err
	}
	return r.store.IndexAdd(ctx, ownerKey(rec.Owner), rec.ID, float64(rec.CreatedAt.UnixMilli()))
}

// Get retrieves an export record, returning (nil, nil) when absent
func (r *exportRepo) Get(ctx context.Context, id string) (*models.ExportRecord, error) {
	data, err := r.store.Get(ctx, recordKey(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rec models.ExportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode export record %s: %w", id, err)
	}
	return &rec, nil
}

// Save writes the export record back under its retention TTL
func (r *exportRepo) Save(ctx context.Context, rec *models.ExportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode export record %s: %w", rec.ID, err)
	}
	return r.store.Set(ctx, recordKey(rec.ID), data, r.retention)
}

// AppendComments appends comments in delivery order with dedup by comment id
func (r *exportRepo) AppendComments(ctx context.Context, exportID string, comments []models.NormalizedComment) (int, int, error) {
	var fresh [][]byte
	duplicates := 0

	for i := range comments {
		wasNew, err := r.store.SetAdd(ctx, dedupKey(exportID), comments[i].CommentID)
		if err != nil {
			return 0, 0, err
		}
		if !wasNew {
			duplicates++
			continue
		}
		data, err := json.Marshal(&comments[i])
		if err != nil {
			return 0, 0, fmt.Errorf("encode comment %s: %w", comments[i].CommentID, err)
		}
		fresh = append(fresh, data)
	}

	if len(fresh) > 0 {
		if _, err := r.store.ListAppend(ctx, commentsKey(exportID), fresh); err != nil {
			return 0, 0, err
		}
	}
	return len(fresh), duplicates, nil
}

// AddUsers records user ids in the distinct-user set and returns the new
// cardinality. Store-resident so resumed invocations in other processes
// observe the same count.
func (r *exportRepo) AddUsers(ctx context.Context, exportID string, userIDs []string) (int, error) {
	for _, userID := range userIDs {
		if _, err := r.store.SetAdd(ctx, usersKey(exportID), userID); err != nil {
			return 0, err
		}
	}
	return r.store.SetCard(ctx, usersKey(exportID))
}

// Comments returns up to limit comments starting at offset, in append order
func (r *exportRepo) Comments(ctx context.Context, exportID string, offset, limit int) ([]models.NormalizedComment, error) {
	items, err := r.store.ListRange(ctx, commentsKey(exportID), offset, limit)
	if err != nil {
		return nil, err
	}

	comments := make([]models.NormalizedComment, 0, len(items))
	for _, item := range items {
		var comment models.NormalizedComment
		if err := json.Unmarshal(item, &comment); err != nil {
			return nil, fmt.Errorf("decode comment in export %s: %w", exportID, err)
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// CommentCount returns the stored comment list length
func (r *exportRepo) CommentCount(ctx context.Context, exportID string) (int, error) {
	return r.store.ListLen(ctx, commentsKey(exportID))
}

// StreamAll invokes callback for every stored comment in append order,
// reading the list in chunks
func (r *exportRepo) StreamAll(ctx context.Context, exportID string, callback func(*models.NormalizedComment) error) error {
	offset := 0
	for {
		comments, err := r.Comments(ctx, exportID, offset, streamChunkSize)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			return nil
		}
		for i := range comments {
			if err := callback(&comments[i]); err != nil {
				return err
			}
		}
		offset += len(comments)
	}
}

// ListByOwner returns the owner's exports, most recently created first.
// Expired records referenced by the index are skipped.
func (r *exportRepo) ListByOwner(ctx context.Context, owner string, limit int) ([]*models.ExportRecord, error) {
	ids, err := r.store.IndexRangeDesc(ctx, ownerKey(owner), limit)
	if err != nil {
		return nil, err
	}

	records := make([]*models.ExportRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
