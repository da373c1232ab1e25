package models

import "time"

// Match is a derived compatibility result for a subject and one candidate.
type Match struct {
	SubjectID       int64     `json:"-"`
	CandidateID     int64     `json:"match_id"`
	Score           float64   `json:"compatibility_score"`
	SharedInterests []string  `json:"tags"`
	ComputedAt      time.Time `json:"computed_at"`
}

// MatchView is a match enriched with the candidate's public profile.
type MatchView struct {
	Match
	User      PublicUser `json:"user"`
	City      string     `json:"city"`
	BudgetMin *int64     `json:"budget_min"`
	BudgetMax *int64     `json:"budget_max"`
}
