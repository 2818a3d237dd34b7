// Package immersion holds the pure domain logic of the tracker: log types,
// progress dimensions, the per-log classifier and the aggregations built on it.
// Nothing in here talks to storage; callers fetch logs and media durations and
// hand them in.
package immersion

import (
	"fmt"
	"strings"
	"time"
)

// LogType is the closed set of activities a log can record.
type LogType string

const (
	Anime   LogType = "anime"
	Manga   LogType = "manga"
	Reading LogType = "reading"
	VN      LogType = "vn"
	Video   LogType = "video"
	Audio   LogType = "audio"
	Movie   LogType = "movie"
	TVShow  LogType = "tv show"
	Other   LogType = "other"
)

// LogTypes lists every log type in display order.
var LogTypes = []LogType{Anime, Manga, Reading, VN, Video, Audio, Movie, TVShow, Other}

// Valid reports whether t is one of LogTypes.
func (t LogType) Valid() bool {
	for _, lt := range LogTypes {
		if lt == t {
			return true
		}
	}
	return false
}

// ParseLogType accepts the canonical names, case-insensitively. "tv_show" and
// "tvshow" are accepted as spellings of "tv show" since query strings and
// spreadsheet headers rarely carry the space.
func ParseLogType(s string) (LogType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "tv_show", "tvshow", "tv-show":
		normalized = string(TVShow)
	}
	t := LogType(normalized)
	if !t.Valid() {
		return "", fmt.Errorf("unknown log type %q", s)
	}
	return t, nil
}

// Category groups log types for the reading/listening hour totals.
type Category int

const (
	CategoryNone Category = iota
	CategoryReading
	CategoryListening
)

// Category maps every log type onto its aggregate bucket.
func (t LogType) Category() Category {
	switch t {
	case Reading, Manga, VN:
		return CategoryReading
	case Anime, Audio, Video:
		return CategoryListening
	case Movie, TVShow, Other:
		return CategoryNone
	default:
		return CategoryNone
	}
}

// Dimension is one of the four countable progress axes.
type Dimension string

const (
	DimensionTime     Dimension = "time"
	DimensionChars    Dimension = "chars"
	DimensionEpisodes Dimension = "episodes"
	DimensionPages    Dimension = "pages"
)

// Dimensions lists the progress axes in a stable order.
var Dimensions = []Dimension{DimensionTime, DimensionChars, DimensionEpisodes, DimensionPages}

func (d Dimension) Valid() bool {
	switch d {
	case DimensionTime, DimensionChars, DimensionEpisodes, DimensionPages:
		return true
	}
	return false
}

// ParseDimension validates a goal type.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown goal type %q", s)
	}
	return d, nil
}

// Log is the storage-independent view of one immersion session. Optional
// numeric fields are nil when the user did not record them.
type Log struct {
	ID       string
	Type     LogType
	Date     time.Time
	MediaID  string
	Time     *float64 // minutes
	Episodes *int
	Pages    *int
	Chars    *int
	XP       int
}

// Goal is the storage-independent view of a daily goal.
type Goal struct {
	ID        string
	Type      Dimension
	Target    float64
	IsActive  bool
	CreatedAt time.Time
}
