package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Post struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Identifier string    `gorm:"size:10;uniqueIndex;not null" json:"identifier"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"not null" json:"slug"`
	Body       string    `gorm:"type:text" json:"body"`
	SubName    string    `gorm:"not null;index" json:"subName"`
	Username   string    `gorm:"not null;index" json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Sub      *Sub      `gorm:"foreignKey:SubName;references:Name" json:"sub,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	URL          string `gorm:"-" json:"url"`
	VoteScore    int    `gorm:"-" json:"voteScore"`
	UserVote     int    `gorm:"-" json:"userVote"`
	CommentCount int    `gorm:"-" json:"commentCount"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.Identifier == "" {
		id, err := MakeID(8)
		if err != nil {
			return err
		}
		p.Identifier = id
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title)
	}
	return nil
}

func (p *Post) AfterFind(*gorm.DB) error {
	p.SetURL()
	return nil
}

func (p *Post) SetURL() {
	p.URL = fmt.Sprintf("/r/%s/%s/%s", p.SubName, p.Identifier, p.Slug)
}
