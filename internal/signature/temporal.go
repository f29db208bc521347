package signature

import (
	"sort"
	"time"

	"github.com/nao1215/handletrace/internal/model"
)

const (
	// burstWindow is the rolling window for burst detection; burstSize is
	// the minimum number of posts inside it to count as a burst.
	burstWindow = time.Hour
	burstSize   = 3

	// sleepActivityShare is the per-hour activity share below which an
	// hour counts as inactive for sleep-window inference.
	sleepActivityShare = 0.02
)

// Schedule labels inferred from the temporal shape.
const (
	ScheduleBusinessHours = "business_hours"
	ScheduleEvening       = "evening"
	ScheduleNightOwl      = "night_owl"
	ScheduleIrregular     = "irregular"
)

// extractTemporal builds the posting-rhythm signature. Fewer than two
// timestamps yield the zero signature: one data point has no rhythm.
func extractTemporal(timestamps []time.Time) model.TemporalSignature {
	if len(timestamps) < 2 {
		return model.TemporalSignature{}
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var sig model.TemporalSignature
	total := float64(len(sorted))

	var businessPosts, eveningPosts, nightPosts int
	for _, ts := range sorted {
		utc := ts.UTC()
		sig.HourHistogram[utc.Hour()] += 1 / total
		sig.DayHistogram[int(utc.Weekday())] += 1 / total

		weekday := utc.Weekday() != time.Saturday && utc.Weekday() != time.Sunday
		switch {
		case weekday && utc.Hour() >= 9 && utc.Hour() < 17:
			businessPosts++
		case utc.Hour() >= 18 && utc.Hour() <= 23:
			eveningPosts++
		case utc.Hour() < 6:
			nightPosts++
		}
	}

	span := sorted[len(sorted)-1].Sub(sorted[0])
	spanDays := span.Hours() / 24
	if spanDays < 1 {
		spanDays = 1
	}
	sig.PostsPerDay = total / spanDays
	sig.BurstCount = countBursts(sorted)
	sig.SleepStartHour, sig.SleepLengthHours = sleepWindow(sig.HourHistogram)
	sig.BusinessHoursRatio = float64(businessPosts) / total
	sig.Schedule = inferSchedule(sig.BusinessHoursRatio, float64(eveningPosts)/total, float64(nightPosts)/total)
	return sig
}

// countBursts counts non-overlapping windows with at least burstSize
// posts inside burstWindow. Timestamps must be sorted.
func countBursts(sorted []time.Time) int {
	bursts := 0
	i := 0
	for i < len(sorted) {
		j := i
		for j < len(sorted) && sorted[j].Sub(sorted[i]) <= burstWindow {
			j++
		}
		if j-i >= burstSize {
			bursts++
			i = j
			continue
		}
		i++
	}
	return bursts
}

// sleepWindow finds the longest circular stretch of low-activity hours.
// Returns its start hour and length; people sleep across midnight, so the
// scan wraps.
func sleepWindow(hours [24]float64) (start, length int) {
	bestStart, bestLen := 0, 0
	for s := 0; s < 24; s++ {
		l := 0
		for l < 24 && hours[(s+l)%24] <= sleepActivityShare {
			l++
		}
		if l > bestLen {
			bestStart, bestLen = s, l
		}
	}
	return bestStart, bestLen
}

// inferSchedule labels the dominant posting pattern.
func inferSchedule(business, evening, night float64) string {
	switch {
	case business >= 0.5:
		return ScheduleBusinessHours
	case evening >= 0.5:
		return ScheduleEvening
	case night >= 0.3:
		return ScheduleNightOwl
	default:
		return ScheduleIrregular
	}
}
