package model

type ChallengeType string

const (
	ChallengeStreak   ChallengeType = "streak"
	ChallengeQuantity ChallengeType = "quantity"
	ChallengeTiming   ChallengeType = "timing"
)

type Challenge struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        ChallengeType `json:"type"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Reward      string        `json:"reward"`
	Difficulty  string        `json:"difficulty"`
	Active      bool          `json:"active"`
	Completed   bool          `json:"completed"`
}

type Badge struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Earned bool   `json:"earned"`
}
