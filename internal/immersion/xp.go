package immersion

import "math"

// XPRule assigns experience to a log at creation time.
type XPRule func(l Log, fallbackEpisodeMinutes float64) int

const (
	// charsPerXP approximates one minute of reading at 21k chars/hour.
	charsPerXP = 350
	// pagesPerXP treats two manga pages as a minute.
	pagesPerXP = 2
)

// DefaultXPRule awards one point per minute of immersion. Logs without time
// are credited from their counts instead: episodes at the fallback episode
// length, characters and pages at fixed rates. The largest estimate wins so a
// session logged with several fields is not credited once per field.
func DefaultXPRule(l Log, fallbackEpisodeMinutes float64) int {
	if fallbackEpisodeMinutes <= 0 {
		fallbackEpisodeMinutes = FallbackEpisodeMinutes
	}
	var best float64
	if l.Time != nil {
		best = math.Max(best, *l.Time)
	}
	if l.Episodes != nil && l.Type == Anime {
		best = math.Max(best, float64(*l.Episodes)*fallbackEpisodeMinutes)
	}
	if l.Chars != nil {
		best = math.Max(best, float64(*l.Chars)/charsPerXP)
	}
	if l.Pages != nil {
		best = math.Max(best, float64(*l.Pages)/pagesPerXP)
	}
	if best <= 0 {
		return 0
	}
	return int(math.Round(best))
}
