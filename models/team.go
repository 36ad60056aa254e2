package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SportID   int       `json:"sport_id" db:"sport_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TournamentTeam is a team's registration in a tournament. Seed 1 is the
// strongest entry and determines initial bracket placement.
type TournamentTeam struct {
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	TeamID       int `json:"team_id" db:"team_id"`
	Seed         int `json:"seed" db:"seed"`

	Team *Team `json:"team,omitempty" db:"-"`
}
