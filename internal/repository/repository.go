package repository

import (
	"context"
	"time"

	"github.com/comment-giveaway-api/internal/models"
	"github.com/comment-giveaway-api/internal/store"
)

// ExportRepository defines the durable participant store: one record, one
// append-only comment list, one dedup index, and one user set per export,
// plus a per-owner recency index.
type ExportRepository interface {
	Create(ctx context.Context, rec *models.ExportRecord) error
	// Get returns (nil, nil) when the export does not exist or has expired
	Get(ctx context.Context, id string) (*models.ExportRecord, error)
	Save(ctx context.Context, rec *models.ExportRecord) error

	// AppendComments appends comments in delivery order, skipping any whose
	// comment id is already in the dedup index. Returns how many were
	// appended and how many were skipped as duplicates.
	AppendComments(ctx context.Context, exportID string, comments []models.NormalizedComment) (appended, duplicates int, err error)

	// AddUsers records user ids in the distinct-user set and returns the
	// resulting cardinality
	AddUsers(ctx context.Context, exportID string, userIDs []string) (int, error)

	// Comments returns up to limit comments starting at offset, in append
	// order. A negative limit reads to the end of the list.
	Comments(ctx context.Context, exportID string, offset, limit int) ([]models.NormalizedComment, error)

	CommentCount(ctx context.Context, exportID string) (int, error)

	// StreamAll invokes callback for every stored comment in append order
	StreamAll(ctx context.Context, exportID string, callback func(*models.NormalizedComment) error) error

	// ListByOwner returns the owner's exports, most recently created first
	ListByOwner(ctx context.Context, owner string, limit int) ([]*models.ExportRecord, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Export ExportRepository
}

// New creates all repositories backed by the given store. Records and their
// side structures expire after the retention window.
func New(s store.Store, retention time.Duration) *Repositories {
	return &Repositories{
		Export: NewExportRepo(s, retention),
	}
}
