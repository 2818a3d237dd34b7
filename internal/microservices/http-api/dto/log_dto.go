package dto

import (
	"time"

	"immersionhub/internal/microservices/http-api/models"
)

// LogRequest creates a log or fully replaces an existing one.
type LogRequest struct {
	Type        string    `json:"type" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
	Time        *float64  `json:"time"`
	Episodes    *int      `json:"episodes"`
	Pages       *int      `json:"pages"`
	Chars       *int      `json:"chars"`
	MediaID     *string   `json:"mediaId"`
}

type LogResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Date        time.Time      `json:"date"`
	Time        *float64       `json:"time,omitempty"`
	Episodes    *int           `json:"episodes,omitempty"`
	Pages       *int           `json:"pages,omitempty"`
	Chars       *int           `json:"chars,omitempty"`
	XP          int            `json:"xp"`
	MediaID     *string        `json:"mediaId,omitempty"`
	Media       *MediaResponse `json:"media,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type LogListResponse struct {
	Items []LogResponse `json:"items"`
	Total int           `json:"total"`
}

func FromLogModel(l models.ImmersionLog) LogResponse {
	resp := LogResponse{
		ID:          l.ID,
		Type:        l.Type,
		Description: l.Description,
		Date:        l.Date,
		Time:        l.Time,
		Episodes:    l.Episodes,
		Pages:       l.Pages,
		Chars:       l.Chars,
		XP:          l.XP,
		MediaID:     l.MediaID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Media != nil {
		media := FromMediaModel(*l.Media)
		resp.Media = &media
	}
	return resp
}

func FromLogModels(logs []models.ImmersionLog) LogListResponse {
	items := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, FromLogModel(l))
	}
	return LogListResponse{Items: items, Total: len(items)}
}
