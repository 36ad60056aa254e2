package models

import (
	"encoding/json"
	"time"
)

type FixtureStatus string

const (
	FixtureStatusScheduled FixtureStatus = "scheduled"
	FixtureStatusLive      FixtureStatus = "live"
	FixtureStatusCompleted FixtureStatus = "completed"
	FixtureStatusCancelled FixtureStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s FixtureStatus) Terminal() bool {
	return s == FixtureStatusCompleted || s == FixtureStatusCancelled
}

// Fixture is a single match slot in a bracket. TeamAID/TeamBID stay nil until
// filled by round-1 seeding or by winner propagation from the previous round.
// Version is the optimistic concurrency token: every accepted mutation
// increments it by exactly one.
type Fixture struct {
	ID              int             `json:"id" db:"id"`
	TournamentID    int             `json:"tournament_id" db:"tournament_id"`
	RoundID         int             `json:"round_id" db:"round_id"`
	BracketPosition int             `json:"bracket_position" db:"bracket_position"`
	TeamAID         *int            `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID         *int            `json:"team_b_id,omitempty" db:"team_b_id"`
	TeamAScore      int             `json:"team_a_score" db:"team_a_score"`
	TeamBScore      int             `json:"team_b_score" db:"team_b_score"`
	ScoreDetails    json.RawMessage `json:"score_details,omitempty" db:"score_details"`
	Status          FixtureStatus   `json:"status" db:"status"`
	WinnerTeamID    *int            `json:"winner_team_id,omitempty" db:"winner_team_id"`
	Version         int             `json:"version" db:"version"`
	ScheduledAt     time.Time       `json:"scheduled_at" db:"scheduled_at"`
	VenueID         *int            `json:"venue_id,omitempty" db:"venue_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
