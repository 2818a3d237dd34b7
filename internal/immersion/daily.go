package immersion

import "time"

// Completion flags whether the active goal for each dimension is met.
type Completion struct {
	Time     bool `json:"time"`
	Chars    bool `json:"chars"`
	Episodes bool `json:"episodes"`
	Pages    bool `json:"pages"`
}

func (c *Completion) set(d Dimension, v bool) {
	switch d {
	case DimensionTime:
		c.Time = v
	case DimensionChars:
		c.Chars = v
	case DimensionEpisodes:
		c.Episodes = v
	case DimensionPages:
		c.Pages = v
	}
}

// Get returns the flag for d.
func (c Completion) Get(d Dimension) bool {
	switch d {
	case DimensionTime:
		return c.Time
	case DimensionChars:
		return c.Chars
	case DimensionEpisodes:
		return c.Episodes
	case DimensionPages:
		return c.Pages
	}
	return false
}

// DailyProgress is the per-dimension sum of one calendar day's logs.
type DailyProgress struct {
	Date      time.Time  `json:"date"`
	Time      float64    `json:"time"`
	Chars     int        `json:"chars"`
	Episodes  int        `json:"episodes"`
	Pages     int        `json:"pages"`
	Completed Completion `json:"completed"`
}

// Sum returns the accumulated value for d.
func (p DailyProgress) Sum(d Dimension) float64 {
	switch d {
	case DimensionTime:
		return p.Time
	case DimensionChars:
		return float64(p.Chars)
	case DimensionEpisodes:
		return float64(p.Episodes)
	case DimensionPages:
		return float64(p.Pages)
	}
	return 0
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow returns the half-open interval [start, end) of the local calendar
// day containing now.
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now, loc)
	return start, start.AddDate(0, 0, 1)
}

// DailyProgress sums the logs dated inside the local day starting at dayStart
// and marks each dimension completed when an active goal for it exists and the
// sum reaches its target. Logs outside the day are ignored.
func (e *Engine) DailyProgress(dayStart time.Time, logs []Log, goals []Goal, durations EpisodeDurations) DailyProgress {
	dayEnd := dayStart.AddDate(0, 0, 1)

	sums := Contribution{}
	for _, l := range logs {
		if l.Date.Before(dayStart) || !l.Date.Before(dayEnd) {
			continue
		}
		for d, v := range e.Classify(l, durations) {
			sums[d] += v
		}
	}

	progress := DailyProgress{
		Date:     dayStart,
		Time:     sums[DimensionTime],
		Chars:    int(sums[DimensionChars]),
		Episodes: int(sums[DimensionEpisodes]),
		Pages:    int(sums[DimensionPages]),
	}

	active := ActiveGoals(goals)
	for _, d := range Dimensions {
		goal, ok := active[d]
		progress.Completed.set(d, ok && progress.Sum(d) >= goal.Target)
	}
	return progress
}

// ActiveGoals indexes the active goals by dimension. Should storage ever hold
// two active goals of one type, the newest wins.
func ActiveGoals(goals []Goal) map[Dimension]Goal {
	active := make(map[Dimension]Goal, len(Dimensions))
	for _, g := range goals {
		if !g.IsActive || !g.Type.Valid() {
			continue
		}
		if cur, ok := active[g.Type]; ok && cur.CreatedAt.After(g.CreatedAt) {
			continue
		}
		active[g.Type] = g
	}
	return active
}
