package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/sporthall/tournament-core/models"
)

var (
	ErrWinnerRequired      = errors.New("completed fixture has no winner to propagate")
	ErrDestinationOccupied = errors.New("destination slot already holds a different team")
	ErrDestinationNotFound = errors.New("destination fixture not found")
	ErrSourceNotCompleted  = errors.New("fixture is not completed")
)

// DestinationSlot computes where the winner of the fixture at the given
// bracket position lands in the next round: position ceil(p/2), team A slot
// for odd source positions, team B for even ones.
func DestinationSlot(position int) (nextPosition int, slotA bool) {
	return (position + 1) / 2, position%2 == 1
}

// ProgressionStore is the storage surface the engine needs. The production
// implementation is backed by the fixture and tournament repositories; tests
// substitute an in-memory fake.
type ProgressionStore interface {
	FixtureByRoundPosition(ctx context.Context, tournamentID, roundNumber, bracketPosition int) (*models.Fixture, error)
	SetFixtureTeam(ctx context.Context, fixtureID int, slotA bool, teamID int) error
	CompleteTournament(ctx context.Context, tournamentID, winnerTeamID int) error
}

// Engine writes a completed fixture's winner into its slot in the next
// round. Callers must invoke Advance exactly once, on the transition into
// the completed status; a fixture's terminal state is the idempotence guard.
type Engine struct {
	store ProgressionStore
}

func NewEngine(store ProgressionStore) *Engine {
	return &Engine{store: store}
}

// Advance propagates the winner of fixture (known to sit in round
// sourceRound of a bracket with roundCount rounds). Completing the final
// round completes the tournament instead of writing a slot.
func (e *Engine) Advance(ctx context.Context, fixture *models.Fixture, sourceRound, roundCount int) error {
	if fixture.Status != models.FixtureStatusCompleted {
		return fmt.Errorf("%w: fixture %d is %s", ErrSourceNotCompleted, fixture.ID, fixture.Status)
	}
	if fixture.WinnerTeamID == nil {
		return fmt.Errorf("%w: fixture %d", ErrWinnerRequired, fixture.ID)
	}

	if sourceRound >= roundCount {
		return e.store.CompleteTournament(ctx, fixture.TournamentID, *fixture.WinnerTeamID)
	}

	destPosition, slotA := DestinationSlot(fixture.BracketPosition)
	dest, err := e.store.FixtureByRoundPosition(ctx, fixture.TournamentID, sourceRound+1, destPosition)
	if err != nil {
		return fmt.Errorf("load destination for fixture %d: %w", fixture.ID, err)
	}
	if dest == nil {
		return fmt.Errorf("%w: tournament %d round %d position %d",
			ErrDestinationNotFound, fixture.TournamentID, sourceRound+1, destPosition)
	}

	occupant := dest.TeamBID
	if slotA {
		occupant = dest.TeamAID
	}
	if occupant != nil {
		if *occupant == *fixture.WinnerTeamID {
			// Same winner already written; nothing to do.
			return nil
		}
		return fmt.Errorf("%w: fixture %d slot", ErrDestinationOccupied, dest.ID)
	}

	return e.store.SetFixtureTeam(ctx, dest.ID, slotA, *fixture.WinnerTeamID)
}
