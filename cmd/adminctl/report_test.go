package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const exportJSON = `[
  {"id": "a", "status": "replied", "projectType": "Villa", "budgetRange": "₹1CR - 2CR", "submittedAt": "2024-03-09T10:00:00Z"},
  {"id": "b", "status": "new", "projectType": "Villa", "budgetRange": "30l-50l", "submittedAt": "2024-02-20T10:00:00+05:30"},
  {"id": "c", "status": "new", "projectType": "", "submittedAt": ""},
  {"id": "d", "status": "archived", "projectType": "Office"}
]`

var reportNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestDecodeSubmissions(t *testing.T) {
	subs, err := decodeSubmissions(strings.NewReader(exportJSON))
	require.NoError(t, err)
	require.Len(t, subs, 4)

	assert.Equal(t, models.Budget1To2Cr, subs[0].BudgetRange)
	assert.Equal(t, models.Budget30To50L, subs[1].BudgetRange)
	assert.True(t, subs[1].SubmittedAt.Equal(time.Date(2024, time.February, 20, 4, 30, 0, 0, time.UTC)))
	assert.True(t, subs[2].SubmittedAt.IsZero())
	assert.True(t, subs[3].SubmittedAt.IsZero())
}

func TestDecodeSubmissions_Errors(t *testing.T) {
	_, err := decodeSubmissions(strings.NewReader(`{"id": "not an array"}`))
	assert.Error(t, err)

	_, err = decodeSubmissions(strings.NewReader(`[{"id": "x"`))
	assert.Error(t, err)
}

func TestDecodeSubmissions_BadTimestampIsKept(t *testing.T) {
	subs, err := decodeSubmissions(strings.NewReader(`[
		{"id": "x", "status": "replied", "submittedAt": "yesterday"},
		{"id": "y", "status": "new", "submittedAt": 1710000000},
		{"id": "z", "status": "new", "submittedAt": null},
		{"id": "ok", "status": "new", "submittedAt": "2024-03-09T10:00:00Z"}
	]`))
	require.NoError(t, err)
	require.Len(t, subs, 4)

	assert.True(t, subs[0].SubmittedAt.IsZero())
	assert.Equal(t, "yesterday", subs[0].SubmittedAtRaw)
	assert.Equal(t, "1710000000", subs[1].SubmittedAtRaw)
	assert.Empty(t, subs[2].SubmittedAtRaw)

	res := stats.Compute(subs, reportNow, stats.Options{})
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 1, res.CountsByStatus.Replied)
	assert.Equal(t, 1, res.NewInWindow)
	require.Len(t, res.Diagnostics, 3)
	assert.Contains(t, res.Diagnostics[0].Reason, "yesterday")
}

func TestCLI_ReportDispatch(t *testing.T) {
	input := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(input, []byte(exportJSON), 0o600))

	var (
		c   cli
		out bytes.Buffer
	)
	parser, err := newParser(context.Background(), &c, &out)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"report", "--input", input, "--now", "2024-03-10T12:00:00Z", "--format", "json", "--weeks", "4"})
	require.NoError(t, err)
	require.NoError(t, kctx.Run())

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.EqualValues(t, 4, res["total"])
	assert.EqualValues(t, 1, res["newInWindow"])
	assert.Len(t, res["weeklySeries"], 4)
}

func TestCLI_SetPasswordValidation(t *testing.T) {
	var c cli
	parser, err := newParser(context.Background(), &c, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = parser.Parse([]string{"set-password", "--email", "a@b.com", "--password", "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func computeExport(t *testing.T) stats.Result {
	t.Helper()
	subs, err := decodeSubmissions(strings.NewReader(exportJSON))
	require.NoError(t, err)
	return stats.Compute(subs, reportNow, stats.Options{WindowDays: 7, Weeks: 4})
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, computeExport(t), "json"))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.EqualValues(t, 4, out["total"])
	assert.EqualValues(t, 25, out["responseRate"])
	assert.EqualValues(t, 1, out["newInWindow"])
	assert.Len(t, out["weeklySeries"], 4)
	assert.Len(t, out["diagnostics"], 2)
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, computeExport(t), "yaml"))

	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 4, out["total"], "totals are inlined at the top level")
	assert.Equal(t, "Villa", out["topProjectType"])
}

func TestWriteReport_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, computeExport(t), "table"))

	text := buf.String()
	assert.Contains(t, text, "Response rate")
	assert.Contains(t, text, "25%")
	assert.Contains(t, text, "New in last 7 days")
	assert.Contains(t, text, "Feb 11")
	assert.Contains(t, text, "(none)")
	assert.Contains(t, text, "₹1CR - 2CR")
	assert.Contains(t, text, "skipped c")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	assert.Error(t, writeReport(&bytes.Buffer{}, stats.Result{}, "xml"))
}
