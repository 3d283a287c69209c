// Package stats turns a snapshot of contact-form submissions into dashboard metrics.
//
// Every function is pure: the caller passes the submission list and the reference
// time, nothing is read from the clock and nothing is cached between calls.
package stats

import (
	"fmt"
	"time"

	"interiors-admin-be/internal/models"
)

const (
	DefaultWindowDays = 7
	DefaultWeeks      = 8

	day  = 24 * time.Hour
	week = 7 * day
)

// StatusCounts - submissions per status. Unknown collects values outside the enum.
type StatusCounts struct {
	New      int `json:"new" yaml:"new"`
	Replied  int `json:"replied" yaml:"replied"`
	Archived int `json:"archived" yaml:"archived"`
	Unknown  int `json:"unknown" yaml:"unknown"`
}

// Get returns the bucket for status; values outside the enum read the Unknown bucket.
func (c StatusCounts) Get(status models.SubmissionStatus) int {
	switch status {
	case models.StatusNew:
		return c.New
	case models.StatusReplied:
		return c.Replied
	case models.StatusArchived:
		return c.Archived
	}
	return c.Unknown
}

// Sum adds up all buckets, including Unknown.
func (c StatusCounts) Sum() int {
	return c.New + c.Replied + c.Archived + c.Unknown
}

// Totals is the status summary of a snapshot.
type Totals struct {
	Total          int          `json:"total" yaml:"total"`
	CountsByStatus StatusCounts `json:"countsByStatus" yaml:"countsByStatus"`
	ResponseRate   int          `json:"responseRate" yaml:"responseRate"`
}

// WeekBucket - submissions received in one trailing 7-day window
type WeekBucket struct {
	Label string    `json:"week" yaml:"week"`
	Start time.Time `json:"start" yaml:"start"`
	Count int       `json:"count" yaml:"count"`
}

// Diagnostic names a record that was left out of a time-based computation.
type Diagnostic struct {
	SubmissionID string `json:"submissionId" yaml:"submissionId"`
	Reason       string `json:"reason" yaml:"reason"`
}

const (
	reasonMissingTimestamp    = "missing submittedAt; excluded from window and weekly series"
	reasonUnparsableTimestamp = "unparsable submittedAt %q; excluded from window and weekly series"
)

// Options tunes Compute. Zero values fall back to the defaults.
type Options struct {
	WindowDays int
	Weeks      int
}

func (o Options) normalized() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.Weeks <= 0 {
		o.Weeks = DefaultWeeks
	}
	return o
}

// Result is the full metric set rendered by the dashboard.
type Result struct {
	Totals            `yaml:",inline"`
	NewInWindow       int            `json:"newInWindow" yaml:"newInWindow"`
	WindowDays        int            `json:"windowDays" yaml:"windowDays"`
	ProjectTypeCounts map[string]int `json:"projectTypeCounts" yaml:"projectTypeCounts"`
	BudgetCounts      map[string]int `json:"budgetCounts" yaml:"budgetCounts"`
	WeeklySeries      []WeekBucket   `json:"weeklySeries" yaml:"weeklySeries"`
	TopProjectType    string         `json:"topProjectType,omitempty" yaml:"topProjectType,omitempty"`
	AverageBudgetLakh int            `json:"averageBudgetLakh" yaml:"averageBudgetLakh"`
	MonthlyAverage    int            `json:"monthlyAverage" yaml:"monthlyAverage"`
	GeneratedAt       time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Diagnostics       []Diagnostic   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Compute runs every aggregation over submissions relative to now.
func Compute(submissions []models.Submission, now time.Time, opts Options) Result {
	opts = opts.normalized()
	projectTypes := CountBy(submissions, ByProjectType)
	top, _ := Top(projectTypes)

	return Result{
		Totals:            ComputeTotals(submissions),
		NewInWindow:       CountInWindow(submissions, now, opts.WindowDays),
		WindowDays:        opts.WindowDays,
		ProjectTypeCounts: projectTypes,
		BudgetCounts:      CountBy(submissions, ByBudgetRange),
		WeeklySeries:      WeeklySeries(submissions, now, opts.Weeks),
		TopProjectType:    top,
		AverageBudgetLakh: AverageBudgetLakh(submissions),
		MonthlyAverage:    MonthlyAverage(submissions, now, 3),
		GeneratedAt:       now,
		Diagnostics:       Validate(submissions),
	}
}

// Validate reports the records that time-based aggregations skip.
func Validate(submissions []models.Submission) []Diagnostic {
	var out []Diagnostic
	for _, s := range submissions {
		if !s.SubmittedAt.IsZero() {
			continue
		}
		reason := reasonMissingTimestamp
		if s.SubmittedAtRaw != "" {
			reason = fmt.Sprintf(reasonUnparsableTimestamp, s.SubmittedAtRaw)
		}
		out = append(out, Diagnostic{SubmissionID: s.ID, Reason: reason})
	}
	return out
}
