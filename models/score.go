package models

import (
	"encoding/json"
	"fmt"
)

// ScorePayload is the sport-specific part of a fixture score. Each sport has
// its own concrete type; payloads arrive tagged by the fixture's sport name
// and are decoded with DecodeScorePayload.
type ScorePayload interface {
	Sport() string
}

type CricketScore struct {
	RunsA    int     `json:"runs_a"`
	RunsB    int     `json:"runs_b"`
	WicketsA int     `json:"wickets_a"`
	WicketsB int     `json:"wickets_b"`
	OversA   float64 `json:"overs_a"`
	OversB   float64 `json:"overs_b"`
}

func (CricketScore) Sport() string { return SportCricket }

type BasketballScore struct {
	Quarter1A int `json:"quarter_1_a"`
	Quarter1B int `json:"quarter_1_b"`
	Quarter2A int `json:"quarter_2_a"`
	Quarter2B int `json:"quarter_2_b"`
	Quarter3A int `json:"quarter_3_a"`
	Quarter3B int `json:"quarter_3_b"`
	Quarter4A int `json:"quarter_4_a"`
	Quarter4B int `json:"quarter_4_b"`
	OvertimeA int `json:"overtime_a"`
	OvertimeB int `json:"overtime_b"`
}

func (BasketballScore) Sport() string { return SportBasketball }

// RacketScore covers volleyball, tennis and badminton, which all report
// sets won per side.
type RacketScore struct {
	SportName string `json:"-"`
	SetsA     int    `json:"sets_a"`
	SetsB     int    `json:"sets_b"`
}

func (s RacketScore) Sport() string { return s.SportName }

type FootballScore struct {
	GoalsA int  `json:"goals_a"`
	GoalsB int  `json:"goals_b"`
	PensA  *int `json:"pens_a,omitempty"`
	PensB  *int `json:"pens_b,omitempty"`
}

func (FootballScore) Sport() string { return SportFootball }

// DecodeScorePayload decodes raw into the payload type for the given sport.
func DecodeScorePayload(sport string, raw json.RawMessage) (ScorePayload, error) {
	switch sport {
	case SportCricket:
		var s CricketScore
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s score: %w", sport, err)
		}
		return s, nil
	case SportBasketball:
		var s BasketballScore
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s score: %w", sport, err)
		}
		return s, nil
	case SportVolleyball, SportTennis, SportBadminton:
		var s RacketScore
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s score: %w", sport, err)
		}
		s.SportName = sport
		return s, nil
	case SportFootball:
		var s FootballScore
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s score: %w", sport, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sport %q", sport)
	}
}
