package feed_test

import (
	"testing"

	"github.com/comment-giveaway-api/internal/feed"
)

func TestNormalize(t *testing.T) {
	raw := feed.RawComment{
		ID:        "17891234567890",
		Text:      "count me in!",
		Timestamp: "2024-03-01T13:45:00+0000",
		LikeCount: 3,
		From:      feed.Author{ID: "998877", Username: "jane_doe"},
	}

	comment := feed.Normalize(raw)

	if comment.CommentID != "17891234567890" {
		t.Errorf("Expected comment id to carry over, got %q", comment.CommentID)
	}
	if comment.UserID != "998877" || comment.Username != "jane_doe" {
		t.Errorf("Expected author fields to carry over, got %q/%q", comment.UserID, comment.Username)
	}
	if comment.Timestamp != "2024-03-01T13:45:00+0000" {
		t.Errorf("Expected timestamp to carry over, got %q", comment.Timestamp)
	}
	if comment.LikeCount != 3 {
		t.Errorf("Expected like count 3, got %d", comment.LikeCount)
	}
	if comment.ParentCommentID != nil {
		t.Error("Expected parent comment id to be nil")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	// Feed omitted like_count and text entirely
	comment := feed.Normalize(feed.RawComment{
		ID:        "1",
		Timestamp: "2024-03-01T13:45:00+0000",
		From:      feed.Author{ID: "u1", Username: "someone"},
	})

	if comment.LikeCount != 0 {
		t.Errorf("Expected like count to default to 0, got %d", comment.LikeCount)
	}
	if comment.Text != "" {
		t.Errorf("Expected text to default to empty, got %q", comment.Text)
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raws := []feed.RawComment{
		{ID: "b"}, {ID: "a"}, {ID: "c"},
	}

	comments := feed.NormalizeAll(raws)

	if len(comments) != 3 {
		t.Fatalf("Expected 3 comments, got %d", len(comments))
	}
	for i, want := range []string{"b", "a", "c"} {
		if comments[i].CommentID != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, comments[i].CommentID)
		}
	}
}
