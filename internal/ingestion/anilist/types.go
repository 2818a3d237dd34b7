package anilist

import (
	"html"
	"regexp"
	"strings"
)

// MediaType is AniList's media kind.
type MediaType string

const (
	MediaTypeAnime MediaType = "ANIME"
	MediaTypeManga MediaType = "MANGA"
)

// MediaResponse wraps a single media item
type MediaResponse struct {
	Media *MediaData `json:"Media"`
}

// MediaData represents an anime or manga entry from AniList
type MediaData struct {
	ID          int        `json:"id"`
	Type        MediaType  `json:"type"`
	Title       TitleData  `json:"title"`
	Description *string    `json:"description"`
	Episodes    *int       `json:"episodes"`
	Duration    *int       `json:"duration"` // minutes per episode
	Chapters    *int       `json:"chapters"`
	Volumes     *int       `json:"volumes"`
	IsAdult     bool       `json:"isAdult"`
	CoverImage  CoverImage `json:"coverImage"`
}

// TitleData contains title variants
type TitleData struct {
	English *string `json:"english"`
	Romaji  *string `json:"romaji"`
	Native  *string `json:"native"`
}

// CoverImage contains cover URLs
type CoverImage struct {
	Large  *string `json:"large"`
	Medium *string `json:"medium"`
}

// Metadata is the flattened form stored in the media catalog.
type Metadata struct {
	AniListID       int
	TitleRomaji     string
	TitleEnglish    string
	TitleNative     string
	Description     string
	CoverURL        string
	EpisodeDuration *float64
	Episodes        *int
	Chapters        *int
	Volumes         *int
	IsAdult         bool
}

// ExtractMetadata flattens an API response.
func ExtractMetadata(m MediaData) Metadata {
	out := Metadata{
		AniListID:    m.ID,
		TitleRomaji:  deref(m.Title.Romaji),
		TitleEnglish: deref(m.Title.English),
		TitleNative:  deref(m.Title.Native),
		Episodes:     m.Episodes,
		Chapters:     m.Chapters,
		Volumes:      m.Volumes,
		IsAdult:      m.IsAdult,
	}

	if m.Description != nil {
		out.Description = CleanDescription(*m.Description)
	}

	// AniList reports 0 for unknown durations
	if m.Duration != nil && *m.Duration > 0 {
		minutes := float64(*m.Duration)
		out.EpisodeDuration = &minutes
	}

	if m.CoverImage.Large != nil {
		out.CoverURL = *m.CoverImage.Large
	} else if m.CoverImage.Medium != nil {
		out.CoverURL = *m.CoverImage.Medium
	}

	return out
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// CleanDescription removes HTML tags and decodes entities
func CleanDescription(desc string) string {
	cleaned := htmlTag.ReplaceAllString(desc, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
