package models

import (
	"strings"
	"time"
)

// SubmissionStatus - triage state of a contact-form submission
type SubmissionStatus string

const (
	StatusNew      SubmissionStatus = "new"
	StatusReplied  SubmissionStatus = "replied"
	StatusArchived SubmissionStatus = "archived"
	// StatusUnknown is never stored; it names the bucket for values outside the enum.
	StatusUnknown SubmissionStatus = "unknown"
)

// SubmissionStatuses lists the stored statuses in display order.
var SubmissionStatuses = []SubmissionStatus{StatusNew, StatusReplied, StatusArchived}

// Valid reports whether s is one of the stored statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusNew, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// ParseSubmissionStatus matches exactly; anything else is StatusUnknown.
func ParseSubmissionStatus(value string) (SubmissionStatus, bool) {
	s := SubmissionStatus(value)
	if s.Valid() {
		return s, true
	}
	return StatusUnknown, false
}

type Submission struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	Name           string           `json:"name" bson:"name"`
	Email          string           `json:"email" bson:"email"`
	Phone          string           `json:"phone" bson:"phone"`
	ProjectType    string           `json:"projectType" bson:"projectType"`
	BudgetRange    BudgetRange      `json:"budgetRange" bson:"budgetRange"`
	ProjectDetails string           `json:"projectDetails" bson:"projectDetails"`
	Status         SubmissionStatus `json:"status" bson:"status"`
	SubmittedAt    time.Time        `json:"submittedAt" bson:"submittedAt"`
	Notes          []Note           `json:"notes,omitempty" bson:"notes,omitempty"`

	// SubmittedAtRaw holds a stored submittedAt that could not be read as a
	// time. SubmittedAt is zero whenever it is set.
	SubmittedAtRaw string `json:"-" bson:"-"`
}

// Note - an admin remark appended to a submission
type Note struct {
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ContactRequest is the public contact-form payload
type ContactRequest struct {
	Name           string `json:"name" binding:"required,max=120"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"max=40"`
	ProjectType    string `json:"projectType" binding:"max=80"`
	BudgetRange    string `json:"budgetRange" binding:"omitempty,budgetrange"`
	ProjectDetails string `json:"projectDetails" binding:"max=5000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,submissionstatus"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// SubmissionFilter carries list filters and pagination
type SubmissionFilter struct {
	Status      string // "", "all" or a SubmissionStatus
	ProjectType string // "", "all" or an exact project type
	Query       string // matched against name and email
	Page        int
	PerPage     int
}

// StatusValue returns the status filter, or "" when no status filtering applies.
func (f SubmissionFilter) StatusValue() SubmissionStatus {
	if f.Status == "" || strings.EqualFold(f.Status, "all") {
		return ""
	}
	return SubmissionStatus(f.Status)
}

// ProjectTypeValue returns the project type filter, or "" when it does not apply.
func (f SubmissionFilter) ProjectTypeValue() string {
	if f.ProjectType == "" || strings.EqualFold(f.ProjectType, "all") {
		return ""
	}
	return f.ProjectType
}

type SubmissionListResponse struct {
	Submissions []*Submission `json:"submissions"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	PerPage     int           `json:"perPage"`
	HasNextPage bool          `json:"hasNextPage"`
}
