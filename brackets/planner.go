// Package brackets computes single-elimination bracket structure and
// propagates winners between rounds. The planner is pure: it performs no I/O
// and leaves persistence to the caller.
package brackets

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sporthall/tournament-core/models"
)

var ErrInvalidTeamCount = errors.New("at least 2 teams are required to build a bracket")

// RoundCount returns ceil(log2(n)) for n >= 2.
func RoundCount(n int) (int, error) {
	if n < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTeamCount, n)
	}
	return int(math.Ceil(math.Log2(float64(n)))), nil
}

// MatchesInRound returns the expected fixture count of the given round.
// The final round always has exactly one match.
func MatchesInRound(roundNumber, roundCount int) int {
	return 1 << uint(roundCount-roundNumber)
}

// RoundName derives the display name of a round from its distance to the
// final.
func RoundName(roundNumber, roundCount int) string {
	switch roundNumber {
	case roundCount:
		return "Final"
	case roundCount - 1:
		return "Semi-finals"
	case roundCount - 2:
		return "Quarter-finals"
	default:
		return fmt.Sprintf("Round %d", roundNumber)
	}
}

// RoundPlan describes one round of the bracket to be created.
type RoundPlan struct {
	Number     int
	Name       string
	MatchCount int
}

// SeedSlot is a round-1 fixture assignment. TeamB is nil for a bye: the lone
// team advances to round 2 without playing.
type SeedSlot struct {
	Position int
	TeamA    *int
	TeamB    *int
	Bye      bool
}

// Plan is the full computed structure for a single-elimination bracket.
type Plan struct {
	RoundCount int
	Rounds     []RoundPlan
	FirstRound []SeedSlot
}

// BuildPlan computes the bracket shape and round-1 seeding for the given
// registered teams. Teams are ordered by seed ascending (seed 1 strongest)
// and the list is padded to the next power of two; slot i pairs entry i
// against entry size-1-i, which keeps the top seeds apart until the final
// and hands byes to the strongest seeds when the count is not a power of
// two.
func BuildPlan(teams []models.TournamentTeam) (*Plan, error) {
	n := len(teams)
	roundCount, err := RoundCount(n)
	if err != nil {
		return nil, err
	}

	bySeed := make([]models.TournamentTeam, n)
	copy(bySeed, teams)
	sort.Slice(bySeed, func(i, j int) bool { return bySeed[i].Seed < bySeed[j].Seed })

	plan := &Plan{RoundCount: roundCount}
	for r := 1; r <= roundCount; r++ {
		plan.Rounds = append(plan.Rounds, RoundPlan{
			Number:     r,
			Name:       RoundName(r, roundCount),
			MatchCount: MatchesInRound(r, roundCount),
		})
	}

	bracketSize := 1 << uint(roundCount)
	half := bracketSize / 2
	plan.FirstRound = make([]SeedSlot, half)
	for i := 0; i < half; i++ {
		slot := SeedSlot{Position: i + 1}

		// i < half < n, so the A side is always a real team.
		teamA := bySeed[i].TeamID
		slot.TeamA = &teamA

		if opp := bracketSize - 1 - i; opp < n {
			teamB := bySeed[opp].TeamID
			slot.TeamB = &teamB
		} else {
			slot.Bye = true
		}
		plan.FirstRound[i] = slot
	}

	return plan, nil
}
