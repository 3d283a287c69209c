package stats

import (
	"sort"
	"time"

	"interiors-admin-be/internal/models"
)

// Selector extracts the category a submission is grouped under.
type Selector func(models.Submission) string

// ByProjectType groups by the free-form project type.
func ByProjectType(s models.Submission) string { return s.ProjectType }

// ByBudgetRange groups by the budget bucket identifier.
func ByBudgetRange(s models.Submission) string { return string(s.BudgetRange) }

// CountBy builds a histogram keyed by the selected value. Blank values are kept
// under the "" key; only observed values appear.
func CountBy(submissions []models.Submission, selector Selector) map[string]int {
	counts := make(map[string]int)
	for _, s := range submissions {
		counts[selector(s)]++
	}
	return counts
}

// Sorted orders a histogram by count descending, then name ascending.
func Sorted(counts map[string]int) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Top returns the most frequent non-blank category. Ties go to the smaller name.
func Top(counts map[string]int) (string, int) {
	for _, c := range Sorted(counts) {
		if c.Name != "" {
			return c.Name, c.Count
		}
	}
	return "", 0
}

// BudgetBreakdown lays the budget histogram out in display order: known buckets
// first (zero counts included), then unrecognised values by name.
func BudgetBreakdown(counts map[string]int) []models.BudgetBreakdownEntry {
	out := make([]models.BudgetBreakdownEntry, 0, len(counts))
	for _, id := range models.BudgetRanges() {
		out = append(out, models.BudgetBreakdownEntry{ID: id, Label: id.Label(), Count: counts[string(id)]})
	}
	var extra []string
	for key := range counts {
		if !models.BudgetRange(key).Known() {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		label := key
		if label == "" {
			label = "Unspecified"
		}
		out = append(out, models.BudgetBreakdownEntry{ID: models.BudgetRange(key), Label: label, Count: counts[key]})
	}
	return out
}

// AverageBudgetLakh is the mean bucket midpoint, rounded to the nearest lakh.
// Unknown buckets count as models.DefaultBudgetLakh.
func AverageBudgetLakh(submissions []models.Submission) int {
	if len(submissions) == 0 {
		return 0
	}
	sum := 0
	for _, s := range submissions {
		sum += s.BudgetRange.Lakh()
	}
	n := len(submissions)
	return (2*sum + n) / (2 * n)
}

// MonthlyAverage is the rounded number of submissions per 30 days over the
// trailing months*30 days.
func MonthlyAverage(submissions []models.Submission, now time.Time, months int) int {
	if months <= 0 {
		return 0
	}
	inRange := CountInWindow(submissions, now, months*30)
	return (2*inRange + months) / (2 * months)
}
