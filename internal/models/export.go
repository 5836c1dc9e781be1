package models

import (
	"time"
)

// ExportStatus represents the status of a comment export
type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "pending"
	ExportStatusRunning    ExportStatus = "running"
	ExportStatusCSVPending ExportStatus = "csv_pending"
	ExportStatusDone       ExportStatus = "done"
	ExportStatusFailed     ExportStatus = "failed"
)

// Terminal reports whether no further transition is defined for the status
func (s ExportStatus) Terminal() bool {
	return s == ExportStatusDone || s == ExportStatusFailed
}

// ExportError is the structured failure recorded on a failed export
type ExportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ExportCounters tracks ingestion progress. All counters are monotonically
// non-decreasing for the lifetime of the export.
type ExportCounters struct {
	Appended          int `json:"appended"`
	Failed            int `json:"failed"`
	SkippedDuplicates int `json:"skipped_duplicates"`
	UniqUsers         int `json:"uniq_users"`
}

// PostRef identifies the source post and caches facts about it at export time
type PostRef struct {
	MediaID              string `json:"media_id"`
	CreatedAt            string `json:"created_at,omitempty"` // ISO-8601, set once known
	CommentsCountAtStart int    `json:"comments_count_at_start,omitempty"`
}

// ExportPaging carries the resumption token into the external feed.
// An empty AfterCursor on a running export means the first page has not
// been fetched yet.
type ExportPaging struct {
	AfterCursor string `json:"after_cursor,omitempty"`
}

// ExportRecord is the per-ingestion-job state machine record
type ExportRecord struct {
	ID         string         `json:"export_id"`
	Owner      string         `json:"owner"`
	Status     ExportStatus   `json:"status"`
	Post       PostRef        `json:"post"`
	Paging     ExportPaging   `json:"paging"`
	Counters   ExportCounters `json:"counters"`
	ListLength int            `json:"list_length"`
	Error      *ExportError   `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// CommentSlice is one page of a comment read-back. NextOffset is absent on
// the final page and on out-of-range reads.
type CommentSlice struct {
	Items      []NormalizedComment `json:"items"`
	NextOffset *int                `json:"next_offset,omitempty"`
}
