package feed

import (
	"context"
)

// RawComment is a comment record as delivered by the external feed
type RawComment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	LikeCount int    `json:"like_count"`
	From      Author `json:"from"`
}

// Author identifies the comment author in the external feed
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Page is one page of the cursor-paginated comment feed. An empty
// NextCursor signals the end of the feed.
type Page struct {
	Items      []RawComment
	NextCursor string
}

// Media holds post-level facts fetched once per export
type Media struct {
	ID            string
	Timestamp     string // ISO-8601 creation time
	CommentsCount int
}

// Client is the external comment feed collaborator. Pages must be fetched
// strictly in cursor order for a given media id; the cursor is the only
// resumption state.
type Client interface {
	// FetchMedia returns post-level metadata for the given media id
	FetchMedia(ctx context.Context, mediaID string) (*Media, error)

	// FetchPage returns the page after cursor, or the first page when
	// cursor is empty
	FetchPage(ctx context.Context, mediaID, cursor string) (*Page, error)
}
