package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media is a catalog entry that logs may reference. It is keyed by the
// content source's own id together with the media type.
type Media struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	ContentID       string    `gorm:"not null;uniqueIndex:ux_media_content_type" json:"contentId"`
	Type            string    `gorm:"not null;uniqueIndex:ux_media_content_type" json:"type"`
	TitleRomaji     string    `json:"titleRomaji,omitempty"`
	TitleEnglish    string    `json:"titleEnglish,omitempty"`
	TitleNative     string    `json:"titleNative,omitempty"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	CoverImage      string    `json:"coverImage,omitempty"`
	EpisodeDuration *float64  `json:"episodeDuration,omitempty"` // minutes, anime only
	Episodes        *int      `json:"episodes,omitempty"`
	Chapters        *int      `json:"chapters,omitempty"`
	Volumes         *int      `json:"volumes,omitempty"`
	IsAdult         bool      `gorm:"default:false" json:"isAdult"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (m *Media) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (Media) TableName() string {
	return "media"
}

// Title picks the first non-empty title, preferring the native one.
func (m *Media) Title() string {
	for _, t := range []string{m.TitleNative, m.TitleRomaji, m.TitleEnglish} {
		if t != "" {
			return t
		}
	}
	return m.ContentID
}
