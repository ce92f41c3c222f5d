package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Identifier string    `gorm:"size:10;uniqueIndex;not null" json:"identifier"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Username   string    `gorm:"not null;index" json:"username"`
	PostID     uint      `gorm:"not null;index" json:"postId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`

	VoteScore int `gorm:"-" json:"voteScore"`
	UserVote  int `gorm:"-" json:"userVote"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.Identifier == "" {
		id, err := MakeID(8)
		if err != nil {
			return err
		}
		c.Identifier = id
	}
	return nil
}
