package models

import "strings"

// BudgetRange is a stable budget bucket identifier. Display labels live in budgetTable.
type BudgetRange string

const (
	Budget10To30L     BudgetRange = "10l-30l"
	Budget30To50L     BudgetRange = "30l-50l"
	Budget50LTo1Cr    BudgetRange = "50l-1cr"
	Budget1To2Cr      BudgetRange = "1cr-2cr"
	Budget2CrPlus     BudgetRange = "2cr-plus"
	BudgetUnspecified BudgetRange = ""
)

type budgetInfo struct {
	ID    BudgetRange
	Label string
	// Lakh is the midpoint used for the average budget estimate.
	Lakh int
}

var budgetTable = []budgetInfo{
	{ID: Budget10To30L, Label: "₹10L - 30L", Lakh: 20},
	{ID: Budget30To50L, Label: "₹30L - 50L", Lakh: 40},
	{ID: Budget50LTo1Cr, Label: "₹50L - 1CR", Lakh: 75},
	{ID: Budget1To2Cr, Label: "₹1CR - 2CR", Lakh: 150},
	{ID: Budget2CrPlus, Label: "₹2CR+", Lakh: 250},
}

// DefaultBudgetLakh is used for budgets outside the table.
const DefaultBudgetLakh = 50

// BudgetRanges returns the known identifiers in display order.
func BudgetRanges() []BudgetRange {
	out := make([]BudgetRange, len(budgetTable))
	for i, b := range budgetTable {
		out[i] = b.ID
	}
	return out
}

// Known reports whether b is in the budget table.
func (b BudgetRange) Known() bool {
	_, ok := lookupBudget(b)
	return ok
}

// Label returns the display label, or the raw value for unknown buckets.
func (b BudgetRange) Label() string {
	if info, ok := lookupBudget(b); ok {
		return info.Label
	}
	return string(b)
}

// Lakh returns the bucket midpoint in lakh rupees.
func (b BudgetRange) Lakh() int {
	if info, ok := lookupBudget(b); ok {
		return info.Lakh
	}
	return DefaultBudgetLakh
}

// Order returns the display position, or -1 for unknown buckets.
func (b BudgetRange) Order() int {
	for i, info := range budgetTable {
		if info.ID == b {
			return i
		}
	}
	return -1
}

// ParseBudgetRange accepts either an identifier or a display label. Unrecognised
// values are kept verbatim so they still show up in breakdowns.
func ParseBudgetRange(value string) BudgetRange {
	v := strings.TrimSpace(value)
	if v == "" {
		return BudgetUnspecified
	}
	for _, info := range budgetTable {
		if strings.EqualFold(v, string(info.ID)) || normalizeBudgetLabel(v) == normalizeBudgetLabel(info.Label) {
			return info.ID
		}
	}
	return BudgetRange(v)
}

func lookupBudget(b BudgetRange) (budgetInfo, bool) {
	for _, info := range budgetTable {
		if info.ID == b {
			return info, true
		}
	}
	return budgetInfo{}, false
}

func normalizeBudgetLabel(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
