package models

import "time"

// Vote references exactly one post or one comment, never both. The composite
// unique indexes hold one vote per voter per content item; rows for the other
// content kind carry a NULL and never collide.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Value     int       `gorm:"not null" json:"value"`
	Username  string    `gorm:"not null;uniqueIndex:idx_votes_user_post;uniqueIndex:idx_votes_user_comment" json:"username"`
	PostID    *uint     `gorm:"uniqueIndex:idx_votes_user_post" json:"postId,omitempty"`
	CommentID *uint     `gorm:"uniqueIndex:idx_votes_user_comment" json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
