package immersion

import "sort"

// FallbackEpisodeMinutes is used for anime episodes whose media has no known
// episode duration.
const FallbackEpisodeMinutes = 24.0

// Contribution maps each dimension a log feeds to its amount. A dimension is
// absent when the log carries no data for it.
type Contribution map[Dimension]float64

// EpisodeDurations maps media ids to minutes per episode. Missing entries and
// non-positive values mean "unknown".
type EpisodeDurations map[string]float64

// Engine classifies logs and aggregates them. The zero value uses
// FallbackEpisodeMinutes.
type Engine struct {
	fallbackEpisodeMinutes float64
}

// NewEngine returns an Engine using fallback minutes for anime episodes of
// unknown length. A non-positive fallback selects FallbackEpisodeMinutes.
func NewEngine(fallback float64) *Engine {
	return &Engine{fallbackEpisodeMinutes: fallback}
}

// FallbackMinutes returns the per-episode minutes used when media duration is
// unknown.
func (e *Engine) FallbackMinutes() float64 {
	if e == nil || e.fallbackEpisodeMinutes <= 0 {
		return FallbackEpisodeMinutes
	}
	return e.fallbackEpisodeMinutes
}

func (e *Engine) episodeMinutes(mediaID string, durations EpisodeDurations) float64 {
	if mediaID != "" {
		if d, ok := durations[mediaID]; ok && d > 0 {
			return d
		}
	}
	return e.FallbackMinutes()
}

// Classify returns the dimensions l contributes to.
//
// Explicit time counts for every type. Anime logs with an episode count also
// add episodes × episode duration to time, on top of any explicit time; a
// session logged with both fields is counted twice.
func (e *Engine) Classify(l Log, durations EpisodeDurations) Contribution {
	out := Contribution{}
	if l.Time != nil {
		out[DimensionTime] += nonNegative(*l.Time)
	}

	switch l.Type {
	case Anime:
		if l.Episodes != nil {
			eps := nonNegative(float64(*l.Episodes))
			out[DimensionTime] += eps * e.episodeMinutes(l.MediaID, durations)
		}
	case Manga, Reading, VN, Video, Audio, Movie, TVShow, Other:
	}

	if l.Chars != nil {
		out[DimensionChars] = nonNegative(float64(*l.Chars))
	}
	if l.Episodes != nil {
		out[DimensionEpisodes] = nonNegative(float64(*l.Episodes))
	}
	if l.Pages != nil {
		out[DimensionPages] = nonNegative(float64(*l.Pages))
	}
	return out
}

// MediaIDsNeedingDuration returns the distinct media ids referenced by anime
// logs that carry an episode count, sorted. These are the only logs whose
// classification depends on media metadata.
func MediaIDsNeedingDuration(logs []Log) []string {
	seen := make(map[string]struct{})
	for _, l := range logs {
		if l.Type != Anime || l.Episodes == nil || l.MediaID == "" {
			continue
		}
		seen[l.MediaID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
