package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeTypeScoreUpdate  ChangeType = "score_update"
	ChangeTypeStatusChange ChangeType = "status_change"
)

// MatchUpdateRecord is one entry in the append-only fixture audit ledger.
type MatchUpdateRecord struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	FixtureID  int             `json:"fixture_id" db:"fixture_id"`
	ChangedBy  int             `json:"changed_by" db:"changed_by"`
	ChangeType ChangeType      `json:"change_type" db:"change_type"`
	ChangedAt  time.Time       `json:"changed_at" db:"changed_at"`
	Before     json.RawMessage `json:"before" db:"before_snapshot"`
	After      json.RawMessage `json:"after" db:"after_snapshot"`
}
