package models

// BudgetBreakdownEntry - submissions per budget bucket, labelled for display
type BudgetBreakdownEntry struct {
	ID    BudgetRange `json:"id"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

// CategoryCount - one entry of a sorted category histogram
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
