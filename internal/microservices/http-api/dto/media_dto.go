package dto

import "immersionhub/internal/microservices/http-api/models"

// AssignMediaRequest links a log to catalog media. Type defaults to the log's type.
type AssignMediaRequest struct {
	ContentID       string   `json:"contentId" binding:"required"`
	Type            string   `json:"type"`
	TitleRomaji     string   `json:"titleRomaji"`
	TitleEnglish    string   `json:"titleEnglish"`
	TitleNative     string   `json:"titleNative"`
	Description     string   `json:"description"`
	CoverImage      string   `json:"coverImage"`
	EpisodeDuration *float64 `json:"episodeDuration" binding:"omitempty,gt=0"`
	Episodes        *int     `json:"episodes" binding:"omitempty,min=0"`
	Chapters        *int     `json:"chapters" binding:"omitempty,min=0"`
	Volumes         *int     `json:"volumes" binding:"omitempty,min=0"`
}

type MediaResponse struct {
	ID              string   `json:"id"`
	ContentID       string   `json:"contentId"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	TitleRomaji     string   `json:"titleRomaji,omitempty"`
	TitleEnglish    string   `json:"titleEnglish,omitempty"`
	TitleNative     string   `json:"titleNative,omitempty"`
	Description     string   `json:"description,omitempty"`
	CoverImage      string   `json:"coverImage,omitempty"`
	EpisodeDuration *float64 `json:"episodeDuration,omitempty"`
	Episodes        *int     `json:"episodes,omitempty"`
	Chapters        *int     `json:"chapters,omitempty"`
	Volumes         *int     `json:"volumes,omitempty"`
	IsAdult         bool     `json:"isAdult"`
}

func FromMediaModel(m models.Media) MediaResponse {
	return MediaResponse{
		ID:              m.ID,
		ContentID:       m.ContentID,
		Type:            m.Type,
		Title:           m.Title(),
		TitleRomaji:     m.TitleRomaji,
		TitleEnglish:    m.TitleEnglish,
		TitleNative:     m.TitleNative,
		Description:     m.Description,
		CoverImage:      m.CoverImage,
		EpisodeDuration: m.EpisodeDuration,
		Episodes:        m.Episodes,
		Chapters:        m.Chapters,
		Volumes:         m.Volumes,
		IsAdult:         m.IsAdult,
	}
}
