package models

type RoundStatus string

const (
	RoundStatusPending   RoundStatus = "pending"
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

type Round struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	RoundName    string      `json:"round_name" db:"round_name"`
	TotalMatches int         `json:"total_matches" db:"total_matches"`
	Status       RoundStatus `json:"status" db:"status"`

	Fixtures []Fixture `json:"fixtures,omitempty" db:"-"`
}
