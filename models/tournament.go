package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// TournamentType mirrors the tournament_type ENUM. Only single elimination
// has bracket generation logic; the other values exist as labels.
type TournamentType string

const (
	TypeSingleElimination TournamentType = "single_elimination"
	TypeRoundRobin        TournamentType = "round_robin"
	TypeDoubleElimination TournamentType = "double_elimination"
)

type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	SportID        int              `json:"sport_id" db:"sport_id"`
	TournamentType TournamentType   `json:"tournament_type" db:"tournament_type"`
	Status         TournamentStatus `json:"status" db:"status"`
	WinnerTeamID   *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	DeletedAt      *time.Time       `json:"-" db:"deleted_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
