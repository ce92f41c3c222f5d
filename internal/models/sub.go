package models

import (
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
)

// DefaultSubImage is served when a sub has no uploaded image.
const DefaultSubImage = "https://www.gravatar.com/avatar?d=mp&f=y"

type Sub struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageUrn    *string   `json:"imageUrn,omitempty"`
	BannerUrn   *string   `json:"bannerUrn,omitempty"`
	Username    string    `gorm:"not null;index" json:"username"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Posts []Post `gorm:"foreignKey:SubName;references:Name" json:"posts,omitempty"`

	ImageURL  string  `gorm:"-" json:"imageUrl"`
	BannerURL *string `gorm:"-" json:"bannerUrl,omitempty"`
}

func (s *Sub) AfterFind(*gorm.DB) error {
	s.SetURLs()
	return nil
}

// SetURLs derives the public image URLs from the stored file names.
// Creates and updates bypass AfterFind, so handlers call it directly.
func (s *Sub) SetURLs() {
	if s.ImageUrn != nil {
		s.ImageURL = fmt.Sprintf("%s/images/%s", AppURL(), *s.ImageUrn)
	} else {
		s.ImageURL = DefaultSubImage
	}
	if s.BannerUrn != nil {
		u := fmt.Sprintf("%s/images/%s", AppURL(), *s.BannerUrn)
		s.BannerURL = &u
	} else {
		s.BannerURL = nil
	}
}

func AppURL() string {
	if u := os.Getenv("APP_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}
