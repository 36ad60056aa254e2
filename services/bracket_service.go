package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sporthall/tournament-core/brackets"
	"github.com/sporthall/tournament-core/models"
	"github.com/sporthall/tournament-core/repositories"
)

// BracketService generates and reads single-elimination bracket structure.
// Generation is idempotent: a tournament's rounds and fixtures are created at
// most once, and repeat calls return the existing structure.
type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Round, error)
	GetBracket(ctx context.Context, tournamentID int) ([]*models.Round, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	roundRepo      repositories.RoundRepository
	fixtureRepo    repositories.FixtureRepository
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	roundRepo repositories.RoundRepository,
	fixtureRepo repositories.FixtureRepository,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		roundRepo:      roundRepo,
		fixtureRepo:    fixtureRepo,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}
	if tournament.TournamentType != models.TypeSingleElimination {
		return nil, fmt.Errorf("%w: tournament %d has type %s",
			ErrUnsupportedFormat, tournamentID, tournament.TournamentType)
	}

	existing, err := s.roundRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list rounds for tournament %d: %w", tournamentID, err)
	}
	if len(existing) > 0 {
		s.logger.Info("bracket already generated, returning existing structure",
			slog.Int("tournament_id", tournamentID), slog.Int("rounds", len(existing)))
		return s.GetBracket(ctx, tournamentID)
	}

	entries, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", tournamentID, err)
	}

	plan, err := s.buildPlan(entries)
	if err != nil {
		return nil, err
	}

	if err := s.persistPlan(ctx, tournament, plan); err != nil {
		if errors.Is(err, repositories.ErrRoundConflict) || errors.Is(err, repositories.ErrFixturePositionConflict) {
			// A concurrent generation request won the race; its structure
			// is the one to return.
			s.logger.Info("concurrent bracket generation detected, returning winner's structure",
				slog.Int("tournament_id", tournamentID))
			return s.GetBracket(ctx, tournamentID)
		}
		return nil, err
	}

	return s.GetBracket(ctx, tournamentID)
}

func (s *bracketService) buildPlan(entries []*models.TournamentTeam) (*brackets.Plan, error) {
	teams := make([]models.TournamentTeam, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			teams = append(teams, *e)
		}
	}

	plan, err := brackets.BuildPlan(teams)
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidTeamCount) {
			return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(teams))
		}
		return nil, err
	}
	return plan, nil
}

// persistPlan creates all rounds and fixtures in one transaction, completing
// bye fixtures and advancing their teams into round 2 before committing.
func (s *bracketService) persistPlan(ctx context.Context, tournament *models.Tournament, plan *brackets.Plan) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bracket transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("bracket transaction rollback failed",
					slog.Int("tournament_id", tournament.ID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("commit bracket transaction: %w", cErr)
			}
		}
	}()

	scheduledAt := time.Now().Add(15 * time.Minute)

	// First pass: rounds and placeholder fixtures, round 1 seeded.
	fixturesByRound := make(map[int][]*models.Fixture, plan.RoundCount)
	for _, rp := range plan.Rounds {
		status := models.RoundStatusPending
		if rp.Number == 1 {
			status = models.RoundStatusActive
		}
		round := &models.Round{
			TournamentID: tournament.ID,
			RoundNumber:  rp.Number,
			RoundName:    rp.Name,
			TotalMatches: rp.MatchCount,
			Status:       status,
		}
		if err = s.roundRepo.Create(ctx, tx, round); err != nil {
			return err
		}

		for pos := 1; pos <= rp.MatchCount; pos++ {
			fixture := &models.Fixture{
				TournamentID:    tournament.ID,
				RoundID:         round.ID,
				BracketPosition: pos,
				Status:          models.FixtureStatusScheduled,
				ScheduledAt:     scheduledAt,
			}
			if rp.Number == 1 {
				slot := plan.FirstRound[pos-1]
				fixture.TeamAID = slot.TeamA
				fixture.TeamBID = slot.TeamB
			}
			if err = s.fixtureRepo.Create(ctx, tx, fixture); err != nil {
				return err
			}
			fixturesByRound[rp.Number] = append(fixturesByRound[rp.Number], fixture)
		}
	}

	// Second pass: byes complete immediately and their teams advance into
	// round 2 at the usual destination slot.
	for _, slot := range plan.FirstRound {
		if !slot.Bye {
			continue
		}
		source := fixturesByRound[1][slot.Position-1]
		if err = s.fixtureRepo.CompleteWithWinner(ctx, tx, source.ID, *slot.TeamA); err != nil {
			return err
		}

		destPos, slotA := brackets.DestinationSlot(slot.Position)
		dest := fixturesByRound[2][destPos-1]
		if err = s.fixtureRepo.SetTeamSlot(ctx, tx, dest.ID, slotA, *slot.TeamA); err != nil {
			return err
		}
		s.logger.Info("bye granted",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("team_id", *slot.TeamA),
			slog.Int("round_2_position", destPos))
	}

	return nil
}

// GetBracket returns the tournament's rounds in order, each carrying its
// fixtures sorted by bracket position.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var (
		rounds   []*models.Round
		fixtures []*models.Fixture
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = s.roundRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("list rounds for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fixtures, err = s.fixtureRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("list fixtures for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byRoundID := make(map[int][]models.Fixture, len(rounds))
	for _, f := range fixtures {
		byRoundID[f.RoundID] = append(byRoundID[f.RoundID], *f)
	}
	for _, round := range rounds {
		round.Fixtures = byRoundID[round.ID]
	}
	return rounds, nil
}
