package stats

import (
	"time"

	"interiors-admin-be/internal/models"
)

// CountInWindow counts submissions with submittedAt >= now - windowDays days.
// The lower bound is inclusive and there is no upper bound, so timestamps after
// now are counted too. Records without a timestamp are skipped.
func CountInWindow(submissions []models.Submission, now time.Time, windowDays int) int {
	since := now.Add(-time.Duration(windowDays) * day)
	count := 0
	for _, s := range submissions {
		if s.SubmittedAt.IsZero() {
			continue
		}
		if !s.SubmittedAt.Before(since) {
			count++
		}
	}
	return count
}

// WeeklySeries buckets submissions into weeks consecutive 7-day windows ending at
// now, oldest first. Window i covers [now-(weeks-i)*7d, now-(weeks-i-1)*7d), so a
// submission stamped exactly now falls outside the series, as does anything older
// than the first window. The result always has weeks entries.
func WeeklySeries(submissions []models.Submission, now time.Time, weeks int) []WeekBucket {
	if weeks <= 0 {
		return []WeekBucket{}
	}
	origin := now.Add(-time.Duration(weeks) * week)
	buckets := make([]WeekBucket, weeks)
	for i := range buckets {
		start := origin.Add(time.Duration(i) * week)
		buckets[i] = WeekBucket{
			Label: start.UTC().Format("Jan 2"),
			Start: start.UTC(),
		}
	}

	for _, s := range submissions {
		if s.SubmittedAt.IsZero() {
			continue
		}
		if s.SubmittedAt.Before(origin) || !s.SubmittedAt.Before(now) {
			continue
		}
		idx := int(s.SubmittedAt.Sub(origin) / week)
		if idx >= weeks {
			idx = weeks - 1
		}
		buckets[idx].Count++
	}
	return buckets
}
