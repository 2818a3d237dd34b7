package immersion

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeRange selects the window of a statistics query.
type TimeRange string

const (
	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
	RangeTotal TimeRange = "total"
)

// ParseTimeRange defaults to month when s is empty.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeMonth, nil
	case RangeToday, RangeWeek, RangeMonth, RangeYear, RangeTotal:
		return r, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// Granularity is the bucket size of the progress-over-time series.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

// Granularity buckets short ranges by day and long ones by month.
func (r TimeRange) Granularity() Granularity {
	switch r {
	case RangeYear, RangeTotal:
		return ByMonth
	default:
		return ByDay
	}
}

// Window returns the half-open [from, to) interval of r around now. Both are
// nil for RangeTotal.
func (r TimeRange) Window(now time.Time, loc *time.Location) (*time.Time, *time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now, loc)
	var from, to time.Time
	switch r {
	case RangeToday:
		from, to = today, today.AddDate(0, 0, 1)
	case RangeWeek:
		from, to = today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)
	case RangeMonth:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, 0)
	case RangeYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(1, 0, 0)
	default:
		return nil, nil
	}
	return &from, &to
}

// StatsQuery scopes a statistics computation. An empty Type means all types.
type StatsQuery struct {
	Range    TimeRange
	Type     LogType
	Location *time.Location
	Now      time.Time
}

// TypeStats totals one log type.
type TypeStats struct {
	Type           LogType `json:"type"`
	Count          int     `json:"count"`
	TotalTimeHours float64 `json:"totalTimeHours"`
	TotalXP        int     `json:"totalXp"`
	TotalChars     int     `json:"totalChars"`
	TotalEpisodes  int     `json:"totalEpisodes"`
	TotalPages     int     `json:"totalPages"`
}

// Totals aggregates across all types in the window.
type Totals struct {
	TotalLogs      int     `json:"totalLogs"`
	TotalXP        int     `json:"totalXp"`
	TotalTimeHours float64 `json:"totalTimeHours"`
	ReadingHours   float64 `json:"readingHours"`
	ListeningHours float64 `json:"listeningHours"`
	TotalChars     int     `json:"totalChars"`
	TotalEpisodes  int     `json:"totalEpisodes"`
	TotalPages     int     `json:"totalPages"`
	UntrackedCount int     `json:"untrackedCount"`
	// AverageReadingSpeed is characters per hour over sessions with both chars
	// and time, nil when there are none.
	AverageReadingSpeed *float64 `json:"averageReadingSpeed,omitempty"`
}

// ReadingSpeedPoint is one session's reading speed.
type ReadingSpeedPoint struct {
	LogID        string    `json:"logId"`
	Date         time.Time `json:"date"`
	Type         LogType   `json:"type"`
	Chars        int       `json:"chars"`
	TimeMinutes  float64   `json:"time"`
	CharsPerHour float64   `json:"charsPerHour"`
}

// ProgressBucket is one point of the progress-over-time chart.
type ProgressBucket struct {
	Period    string    `json:"period"`
	Start     time.Time `json:"start"`
	XP        int       `json:"xp"`
	TimeHours float64   `json:"timeHours"`
	Logs      int       `json:"logs"`
}

// PeriodStatistics is the full response of a statistics query.
type PeriodStatistics struct {
	TimeRange        TimeRange           `json:"timeRange"`
	Type             string              `json:"type"`
	From             *time.Time          `json:"from,omitempty"`
	To               *time.Time          `json:"to,omitempty"`
	StatsByType      []TypeStats         `json:"statsByType"`
	Totals           Totals              `json:"totals"`
	ReadingSpeedData []ReadingSpeedPoint `json:"readingSpeedData"`
	ProgressOverTime []ProgressBucket    `json:"progressOverTime"`
}

// ReadingSpeed returns characters per hour, or false when time is not
// positive. Sessions without time have no speed rather than zero or infinity.
func ReadingSpeed(chars, minutes float64) (float64, bool) {
	if minutes <= 0 || chars <= 0 {
		return 0, false
	}
	return chars / (minutes / 60), true
}

// Statistics aggregates logs over the query window. Logs outside the window or
// of another type than q.Type are skipped, so callers may over-fetch.
func (e *Engine) Statistics(q StatsQuery, logs []Log, durations EpisodeDurations) PeriodStatistics {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	if q.Range == "" {
		q.Range = RangeMonth
	}
	from, to := q.Range.Window(now, loc)

	typeLabel := "all"
	if q.Type != "" {
		typeLabel = string(q.Type)
	}
	stats := PeriodStatistics{
		TimeRange:        q.Range,
		Type:             typeLabel,
		From:             from,
		To:               to,
		StatsByType:      []TypeStats{},
		ReadingSpeedData: []ReadingSpeedPoint{},
		ProgressOverTime: []ProgressBucket{},
	}

	gran := q.Range.Granularity()
	byType := make(map[LogType]*TypeStats)
	buckets := make(map[string]*ProgressBucket)
	var speedChars, speedMinutes float64
	var first, last time.Time

	for _, l := range logs {
		if q.Type != "" && l.Type != q.Type {
			continue
		}
		if from != nil && (l.Date.Before(*from) || !l.Date.Before(*to)) {
			continue
		}

		c := e.Classify(l, durations)
		hours := c[DimensionTime] / 60

		ts, ok := byType[l.Type]
		if !ok {
			ts = &TypeStats{Type: l.Type}
			byType[l.Type] = ts
		}
		ts.Count++
		ts.TotalTimeHours += hours
		ts.TotalXP += l.XP
		ts.TotalChars += int(c[DimensionChars])
		ts.TotalEpisodes += int(c[DimensionEpisodes])
		ts.TotalPages += int(c[DimensionPages])

		t := &stats.Totals
		t.TotalLogs++
		t.TotalXP += l.XP
		t.TotalTimeHours += hours
		t.TotalChars += int(c[DimensionChars])
		t.TotalEpisodes += int(c[DimensionEpisodes])
		t.TotalPages += int(c[DimensionPages])
		switch l.Type.Category() {
		case CategoryReading:
			t.ReadingHours += hours
		case CategoryListening:
			t.ListeningHours += hours
		}
		if l.MediaID == "" {
			t.UntrackedCount++
		}

		if speed, ok := ReadingSpeed(c[DimensionChars], c[DimensionTime]); ok {
			stats.ReadingSpeedData = append(stats.ReadingSpeedData, ReadingSpeedPoint{
				LogID:        l.ID,
				Date:         l.Date,
				Type:         l.Type,
				Chars:        int(c[DimensionChars]),
				TimeMinutes:  c[DimensionTime],
				CharsPerHour: speed,
			})
			speedChars += c[DimensionChars]
			speedMinutes += c[DimensionTime]
		}

		start := bucketStart(l.Date, gran, loc)
		key := bucketLabel(start, gran)
		b, ok := buckets[key]
		if !ok {
			b = &ProgressBucket{Period: key, Start: start}
			buckets[key] = b
		}
		b.XP += l.XP
		b.TimeHours += hours
		b.Logs++

		if first.IsZero() || start.Before(first) {
			first = start
		}
		if last.IsZero() || start.After(last) {
			last = start
		}
	}

	for _, lt := range LogTypes {
		if ts, ok := byType[lt]; ok {
			stats.StatsByType = append(stats.StatsByType, *ts)
		}
	}

	if avg, ok := ReadingSpeed(speedChars, speedMinutes); ok {
		stats.Totals.AverageReadingSpeed = &avg
	}

	sort.SliceStable(stats.ReadingSpeedData, func(i, j int) bool {
		return stats.ReadingSpeedData[i].Date.Before(stats.ReadingSpeedData[j].Date)
	})

	// Bounded ranges chart every bucket in the window; the total range spans
	// the first to the last logged bucket.
	if from != nil {
		first = bucketStart(*from, gran, loc)
		last = bucketStart(to.Add(-time.Nanosecond), gran, loc)
	}
	if !first.IsZero() {
		for cur := first; !cur.After(last); cur = nextBucket(cur, gran) {
			key := bucketLabel(cur, gran)
			if b, ok := buckets[key]; ok {
				stats.ProgressOverTime = append(stats.ProgressOverTime, *b)
				continue
			}
			stats.ProgressOverTime = append(stats.ProgressOverTime, ProgressBucket{Period: key, Start: cur})
		}
	}

	return stats
}

func bucketStart(t time.Time, gran Granularity, loc *time.Location) time.Time {
	t = t.In(loc)
	if gran == ByMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func nextBucket(t time.Time, gran Granularity) time.Time {
	if gran == ByMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func bucketLabel(t time.Time, gran Granularity) string {
	if gran == ByMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}
