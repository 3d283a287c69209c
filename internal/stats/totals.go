package stats

import "interiors-admin-be/internal/models"

// ComputeTotals counts submissions per status and derives the response rate.
// Duplicate ids are counted as given.
func ComputeTotals(submissions []models.Submission) Totals {
	var counts StatusCounts
	for _, s := range submissions {
		switch s.Status {
		case models.StatusNew:
			counts.New++
		case models.StatusReplied:
			counts.Replied++
		case models.StatusArchived:
			counts.Archived++
		default:
			counts.Unknown++
		}
	}
	total := len(submissions)
	return Totals{
		Total:          total,
		CountsByStatus: counts,
		ResponseRate:   percent(counts.Replied, total),
	}
}

// percent is round-half-up of 100*part/whole, 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
