package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"immersionhub/internal/immersion"
)

// DailyGoal is a per-user target for one progress dimension. At most one goal
// per (user, type) may be active; the database enforces this with a partial
// unique index (see database/migrations).
type DailyGoal struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	Type      string    `gorm:"type:text;not null" json:"type"`
	Target    float64   `gorm:"not null;check:target > 0" json:"target"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (g *DailyGoal) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

func (DailyGoal) TableName() string {
	return "daily_goals"
}

// ToGoal converts the row into the aggregation view.
func (g *DailyGoal) ToGoal() immersion.Goal {
	return immersion.Goal{
		ID:        g.ID,
		Type:      immersion.Dimension(g.Type),
		Target:    g.Target,
		IsActive:  g.IsActive,
		CreatedAt: g.CreatedAt,
	}
}

// ToGoals converts a slice of rows.
func ToGoals(goals []DailyGoal) []immersion.Goal {
	out := make([]immersion.Goal, 0, len(goals))
	for i := range goals {
		out = append(out, goals[i].ToGoal())
	}
	return out
}
