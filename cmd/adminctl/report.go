package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/stats"

	"gopkg.in/yaml.v3"
)

type reportCmd struct {
	Input      string `required:"" type:"existingfile" help:"JSON array of submissions."`
	Now        string `help:"Reference time (RFC3339). Defaults to the current time."`
	Weeks      int    `default:"8" help:"Number of weeks in the series."`
	WindowDays int    `name:"window-days" default:"7" help:"Days counted as new."`
	Format     string `default:"table" enum:"json,yaml,table" help:"Output format (json, yaml, table)."`
}

// record is the export shape; submittedAt may be missing or empty.
type record struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	ProjectType    string          `json:"projectType"`
	BudgetRange    string          `json:"budgetRange"`
	ProjectDetails string          `json:"projectDetails"`
	Status         string          `json:"status"`
	SubmittedAt    json.RawMessage `json:"submittedAt"`
}

func (cmd *reportCmd) Run(_ context.Context, out io.Writer) error {
	now := time.Now().UTC()
	if cmd.Now != "" {
		t, err := time.Parse(time.RFC3339, cmd.Now)
		if err != nil {
			return fmt.Errorf("adminctl: --now: %w", err)
		}
		now = t
	}

	f, err := os.Open(cmd.Input)
	if err != nil {
		return fmt.Errorf("adminctl: open input: %w", err)
	}
	defer f.Close()

	subs, err := decodeSubmissions(f)
	if err != nil {
		return err
	}

	res := stats.Compute(subs, now, stats.Options{WindowDays: cmd.WindowDays, Weeks: cmd.Weeks})
	return writeReport(out, res, cmd.Format)
}

func decodeSubmissions(r io.Reader) ([]models.Submission, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("adminctl: decode submissions: %w", err)
	}

	subs := make([]models.Submission, 0, len(records))
	for _, rec := range records {
		at, raw := parseSubmittedAt(rec.SubmittedAt)
		subs = append(subs, models.Submission{
			ID:             rec.ID,
			Name:           rec.Name,
			Email:          rec.Email,
			Phone:          rec.Phone,
			ProjectType:    rec.ProjectType,
			BudgetRange:    models.ParseBudgetRange(rec.BudgetRange),
			ProjectDetails: rec.ProjectDetails,
			Status:         models.SubmissionStatus(rec.Status),
			SubmittedAt:    at,
			SubmittedAtRaw: raw,
		})
	}
	return subs, nil
}

// parseSubmittedAt reads an RFC3339 string. Missing, null and empty values give
// a zero time; anything else unreadable is returned as raw text.
func parseSubmittedAt(value json.RawMessage) (time.Time, string) {
	text := strings.TrimSpace(string(value))
	if text == "" || text == "null" {
		return time.Time{}, ""
	}
	var ts string
	if err := json.Unmarshal(value, &ts); err != nil {
		return time.Time{}, text
	}
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, ""
	}
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, ts
	}
	return at, ""
}

func writeReport(w io.Writer, res stats.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeTable(w, res)
	}
	return fmt.Errorf("adminctl: unknown format %q", format)
}

func writeTable(w io.Writer, res stats.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Generated\t%s\n", res.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(tw, "Total\t%d\n", res.Total)
	fmt.Fprintf(tw, "New\t%d\n", res.CountsByStatus.New)
	fmt.Fprintf(tw, "Replied\t%d\n", res.CountsByStatus.Replied)
	fmt.Fprintf(tw, "Archived\t%d\n", res.CountsByStatus.Archived)
	if res.CountsByStatus.Unknown > 0 {
		fmt.Fprintf(tw, "Other status\t%d\n", res.CountsByStatus.Unknown)
	}
	fmt.Fprintf(tw, "Response rate\t%d%%\n", res.ResponseRate)
	fmt.Fprintf(tw, "New in last %d days\t%d\n", res.WindowDays, res.NewInWindow)
	fmt.Fprintf(tw, "Monthly average\t%d\n", res.MonthlyAverage)
	fmt.Fprintf(tw, "Average budget\t%dL\n", res.AverageBudgetLakh)
	if res.TopProjectType != "" {
		fmt.Fprintf(tw, "Top project type\t%s\n", res.TopProjectType)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Week\tSubmissions")
	for _, b := range res.WeeklySeries {
		fmt.Fprintf(tw, "%s\t%d\n", b.Label, b.Count)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Project type\tSubmissions")
	for _, c := range stats.Sorted(res.ProjectTypeCounts) {
		name := c.Name
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(tw, "%s\t%d\n", name, c.Count)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Budget\tSubmissions")
	for _, b := range stats.BudgetBreakdown(res.BudgetCounts) {
		fmt.Fprintf(tw, "%s\t%d\n", b.Label, b.Count)
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(tw)
		for _, d := range res.Diagnostics {
			fmt.Fprintf(tw, "skipped %s\t%s\n", d.SubmissionID, d.Reason)
		}
	}
	return tw.Flush()
}
