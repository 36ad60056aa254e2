// Package scores validates sport-specific score payloads before any fixture
// mutation is persisted.
package scores

import (
	"fmt"

	"github.com/sporthall/tournament-core/models"
)

// InvalidDataError pinpoints the first offending field of a score payload.
type InvalidDataError struct {
	Sport  string
	Field  string
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid %s score data: %s %s", e.Sport, e.Field, e.Reason)
}

const maxCricketWickets = 10

// Validate checks p against the rules of its sport. It fails fast on the
// first violation and never touches storage.
func Validate(p models.ScorePayload) error {
	switch s := p.(type) {
	case models.CricketScore:
		return validateCricket(s)
	case models.BasketballScore:
		return validateBasketball(s)
	case models.RacketScore:
		return validateRacket(s)
	case models.FootballScore:
		return validateFootball(s)
	default:
		return fmt.Errorf("no validator for sport %q", p.Sport())
	}
}

func validateCricket(s models.CricketScore) error {
	checks := []struct {
		field string
		value int
	}{
		{"wickets_a", s.WicketsA},
		{"wickets_b", s.WicketsB},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > maxCricketWickets {
			return &InvalidDataError{
				Sport:  models.SportCricket,
				Field:  c.field,
				Reason: fmt.Sprintf("must be between 0 and %d, got %d", maxCricketWickets, c.value),
			}
		}
	}
	if s.RunsA < 0 {
		return nonNegative(models.SportCricket, "runs_a", s.RunsA)
	}
	if s.RunsB < 0 {
		return nonNegative(models.SportCricket, "runs_b", s.RunsB)
	}
	if s.OversA < 0 {
		return &InvalidDataError{Sport: models.SportCricket, Field: "overs_a", Reason: "must not be negative"}
	}
	if s.OversB < 0 {
		return &InvalidDataError{Sport: models.SportCricket, Field: "overs_b", Reason: "must not be negative"}
	}
	return nil
}

func validateBasketball(s models.BasketballScore) error {
	checks := []struct {
		field string
		value int
	}{
		{"quarter_1_a", s.Quarter1A}, {"quarter_1_b", s.Quarter1B},
		{"quarter_2_a", s.Quarter2A}, {"quarter_2_b", s.Quarter2B},
		{"quarter_3_a", s.Quarter3A}, {"quarter_3_b", s.Quarter3B},
		{"quarter_4_a", s.Quarter4A}, {"quarter_4_b", s.Quarter4B},
		{"overtime_a", s.OvertimeA}, {"overtime_b", s.OvertimeB},
	}
	for _, c := range checks {
		if c.value < 0 {
			return nonNegative(models.SportBasketball, c.field, c.value)
		}
	}
	return nil
}

func validateRacket(s models.RacketScore) error {
	if s.SetsA < 0 {
		return nonNegative(s.Sport(), "sets_a", s.SetsA)
	}
	if s.SetsB < 0 {
		return nonNegative(s.Sport(), "sets_b", s.SetsB)
	}
	return nil
}

func validateFootball(s models.FootballScore) error {
	if s.GoalsA < 0 {
		return nonNegative(models.SportFootball, "goals_a", s.GoalsA)
	}
	if s.GoalsB < 0 {
		return nonNegative(models.SportFootball, "goals_b", s.GoalsB)
	}
	if s.PensA != nil && *s.PensA < 0 {
		return nonNegative(models.SportFootball, "pens_a", *s.PensA)
	}
	if s.PensB != nil && *s.PensB < 0 {
		return nonNegative(models.SportFootball, "pens_b", *s.PensB)
	}
	return nil
}

func nonNegative(sport, field string, got int) *InvalidDataError {
	return &InvalidDataError{
		Sport:  sport,
		Field:  field,
		Reason: fmt.Sprintf("must not be negative, got %d", got),
	}
}
