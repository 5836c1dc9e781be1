package models

// NormalizedComment is the canonical shape of a single comment once imported
// from the external feed. Immutable after creation.
type NormalizedComment struct {
	CommentID       string  `json:"comment_id"`
	UserID          string  `json:"user_id"`
	Username        string  `json:"username"`
	Timestamp       string  `json:"timestamp"` // ISO-8601
	LikeCount       int     `json:"like_count"`
	ParentCommentID *string `json:"parent_comment_id"` // reserved, currently always nil
	Text            string  `json:"text"`
}

// Participant is a comment reduced to the fields winner selection needs.
type Participant struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

// AsParticipant reduces a comment to its selection view
func (c *NormalizedComment) AsParticipant() Participant {
	return Participant{
		CommentID: c.CommentID,
		UserID:    c.UserID,
		Username:  c.Username,
	}
}
