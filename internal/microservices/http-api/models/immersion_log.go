package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"immersionhub/internal/immersion"
)

// ImmersionLog is one recorded immersion session.
type ImmersionLog struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index:idx_logs_user_date" json:"userId"`
	Type        string    `gorm:"type:text;not null" json:"type"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Time        *float64  `json:"time,omitempty"` // minutes
	Episodes    *int      `json:"episodes,omitempty"`
	Pages       *int      `json:"pages,omitempty"`
	Chars       *int      `json:"chars,omitempty"`
	Date        time.Time `gorm:"not null;index:idx_logs_user_date" json:"date"`
	MediaID     *string   `gorm:"type:uuid;index" json:"mediaId,omitempty"`
	XP          int       `gorm:"column:xp;not null;default:0" json:"xp"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Associations
	Media *Media `gorm:"foreignKey:MediaID" json:"media,omitempty"`
}

// BeforeCreate hook to set UUID before creating a log
func (l *ImmersionLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

func (ImmersionLog) TableName() string {
	return "immersion_logs"
}

// ToEntry converts the row into the aggregation view.
func (l *ImmersionLog) ToEntry() immersion.Log {
	entry := immersion.Log{
		ID:       l.ID,
		Type:     immersion.LogType(l.Type),
		Date:     l.Date,
		Time:     l.Time,
		Episodes: l.Episodes,
		Pages:    l.Pages,
		Chars:    l.Chars,
		XP:       l.XP,
	}
	if l.MediaID != nil {
		entry.MediaID = *l.MediaID
	}
	return entry
}

// ToEntries converts a slice of rows.
func ToEntries(logs []ImmersionLog) []immersion.Log {
	out := make([]immersion.Log, 0, len(logs))
	for i := range logs {
		out = append(out, logs[i].ToEntry())
	}
	return out
}
