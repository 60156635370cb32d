package progress

import (
	"math"
	"sort"
	"time"
)

// UsageEvent is one entry of a word's usage history.
type UsageEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
}

// WordUsage is the lifetime usage record of one vocabulary item.
type WordUsage struct {
	// ID is the map key; it is not stored inside the record.
	ID          string       `json:"-"`
	Label       string       `json:"label"`
	TotalCount  int          `json:"totalCount"`
	FirstUsedAt time.Time    `json:"firstUsedAt"`
	LastUsedAt  time.Time    `json:"lastUsedAt"`
	History     []UsageEvent `json:"history"`
}

// DailyUsage aggregates one calendar day of word usage.
type DailyUsage struct {
	TotalWordsUsed  int            `json:"totalWordsUsed"`
	UniqueWordCount int            `json:"uniqueWordCount"`
	PerWord         map[string]int `json:"perWord"`
}

// WordUsageMap is keyed by item ID.
type WordUsageMap map[string]WordUsage

// DailyUsageMap is keyed by day key.
type DailyUsageMap map[string]DailyUsage

// Record applies one usage of an item and returns the updated record.
// An empty label keeps the previously stored one.
func (m WordUsageMap) Record(itemID, label string, at time.Time, day string) WordUsage {
	rec, ok := m[itemID]
	if !ok {
		rec = WordUsage{FirstUsedAt: at}
	}
	if label != "" {
		rec.Label = label
	}
	rec.TotalCount++
	rec.LastUsedAt = at
	rec.History = append(rec.History, UsageEvent{Timestamp: at, Date: day})
	m[itemID] = rec

	rec.ID = itemID
	return rec
}

// Record applies one usage of an item to the given day's aggregate.
func (m DailyUsageMap) Record(itemID, day string) DailyUsage {
	agg := m[day]
	if agg.PerWord == nil {
		agg.PerWord = make(map[string]int)
	}
	if agg.PerWord[itemID] == 0 {
		agg.UniqueWordCount++
	}
	agg.PerWord[itemID]++
	agg.TotalWordsUsed++
	m[day] = agg
	return agg
}

// DistinctWords is the number of items ever used.
func (m WordUsageMap) DistinctWords() int {
	return len(m)
}

// TopUsed returns records sorted by total count descending, ties broken by
// item ID. A non-positive limit returns every record.
func TopUsed(m WordUsageMap, limit int) []WordUsage {
	out := make([]WordUsage, 0, len(m))
	for id, rec := range m {
		rec.ID = id
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCount != out[j].TotalCount {
			return out[i].TotalCount > out[j].TotalCount
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DayStats is one bar of the weekly chart.
type DayStats struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	TotalWords  int    `json:"totalWords"`
	UniqueWords int    `json:"uniqueWords"`
}

// WeeklyStats summarizes a run of days.
type WeeklyStats struct {
	TotalWords    int        `json:"totalWords"`
	UniqueWords   int        `json:"uniqueWords"`
	DailyData     []DayStats `json:"dailyData"`
	AveragePerDay float64    `json:"averagePerDay"`
}

// ComputeWeekly builds stats over the given days, oldest first. Days without
// an aggregate contribute zero. UniqueWords is the union of item IDs across
// all days, not the sum of daily unique counts. label may be nil.
func ComputeWeekly(daily DailyUsageMap, days []string, label func(day string) string) WeeklyStats {
	stats := WeeklyStats{DailyData: make([]DayStats, 0, len(days))}
	seen := make(map[string]struct{})

	for _, day := range days {
		agg := daily[day]
		entry := DayStats{
			Date:        day,
			TotalWords:  agg.TotalWordsUsed,
			UniqueWords: agg.UniqueWordCount,
		}
		if label != nil {
			entry.Label = label(day)
		}
		stats.DailyData = append(stats.DailyData, entry)
		stats.TotalWords += agg.TotalWordsUsed
		for id := range agg.PerWord {
			seen[id] = struct{}{}
		}
	}

	stats.UniqueWords = len(seen)
	if len(days) > 0 {
		stats.AveragePerDay = math.Round(float64(stats.TotalWords)/float64(len(days))*10) / 10
	}
	return stats
}
