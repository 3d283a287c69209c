package services

import (
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/utils"

	"github.com/sahilm/fuzzy"
)

// Suggestion is one fuzzy match for the submissions search box.
type Suggestion struct {
	SubmissionID string `json:"submissionId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Score        int    `json:"score"`
}

// submissionSource adapts submissions to fuzzy.Source; each entry is
// "name email" folded for accent-insensitive matching.
type submissionSource []*models.Submission

func (s submissionSource) String(i int) string {
	return utils.SearchKey(s[i].Name + " " + s[i].Email)
}

func (s submissionSource) Len() int { return len(s) }

// Suggest ranks submissions by fuzzy match of query against name and e-mail.
// Duplicate e-mail addresses are reported once, best score first.
func Suggest(subs []*models.Submission, query string, limit int) []Suggestion {
	key := utils.SearchKey(query)
	if key == "" || len(subs) == 0 {
		return []Suggestion{}
	}

	matches := fuzzy.FindFrom(key, submissionSource(subs))
	seen := make(map[string]bool)
	out := make([]Suggestion, 0, limit)
	for _, m := range matches {
		s := subs[m.Index]
		email := utils.NormalizeEmail(s.Email)
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Suggestion{
			SubmissionID: s.ID,
			Name:         s.Name,
			Email:        s.Email,
			Score:        m.Score,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
