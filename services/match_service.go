package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sporthall/tournament-core/brackets"
	"github.com/sporthall/tournament-core/models"
	"github.com/sporthall/tournament-core/repositories"
	"github.com/sporthall/tournament-core/scores"
)

// FixtureUpdateInput is a moderator's patch for a live fixture. The expected
// version is the optimistic concurrency token: the update only applies if the
// stored fixture is still at that version.
type FixtureUpdateInput struct {
	ExpectedVersion int                   `json:"expected_version"`
	Status          *models.FixtureStatus `json:"status,omitempty"`
	TeamAScore      *int                  `json:"team_a_score,omitempty"`
	TeamBScore      *int                  `json:"team_b_score,omitempty"`
	ScoreDetails    json.RawMessage       `json:"score_details,omitempty"`
	WinnerTeamID    *int                  `json:"winner_team_id,omitempty"`
}

type MatchService interface {
	UpdateFixture(ctx context.Context, actor *models.User, fixtureID int, input FixtureUpdateInput) (*models.Fixture, error)
	GetFixture(ctx context.Context, fixtureID int) (*models.Fixture, error)
	ListFixtureUpdates(ctx context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error)
}

type matchService struct {
	db             *sql.DB
	fixtureRepo    repositories.FixtureRepository
	roundRepo      repositories.RoundRepository
	tournamentRepo repositories.TournamentRepository
	sportRepo      repositories.SportRepository
	auditRepo      repositories.AuditRepository
	authz          AuthzService
	limiter        *UpdateLimiter
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	fixtureRepo repositories.FixtureRepository,
	roundRepo repositories.RoundRepository,
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	auditRepo repositories.AuditRepository,
	authz AuthzService,
	limiter *UpdateLimiter,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		fixtureRepo:    fixtureRepo,
		roundRepo:      roundRepo,
		tournamentRepo: tournamentRepo,
		sportRepo:      sportRepo,
		auditRepo:      auditRepo,
		authz:          authz,
		limiter:        limiter,
		logger:         logger,
	}
}

// UpdateFixture runs the full guarded pipeline: authorization, throttling,
// sport validation, status machine, version-guarded conditional write, audit
// record, and - on completion - winner propagation. Nothing is persisted if
// any check fails.
func (s *matchService) UpdateFixture(ctx context.Context, actor *models.User, fixtureID int, input FixtureUpdateInput) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("load fixture %d: %w", fixtureID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, fixture.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", fixture.TournamentID, err)
	}

	if err := s.authz.CanModerateFixture(ctx, actor, tournament.SportID, fixture.VenueID); err != nil {
		return nil, err
	}

	if !s.limiter.Allow(actor.ID, fixtureID) {
		return nil, ErrRateLimited
	}

	if input.ScoreDetails != nil {
		if err := s.validateScoreDetails(ctx, tournament.SportID, input.ScoreDetails); err != nil {
			return nil, err
		}
	}

	completing, err := s.checkTransition(fixture, input)
	if err != nil {
		return nil, err
	}

	before, err := json.Marshal(fixture)
	if err != nil {
		return nil, fmt.Errorf("snapshot fixture %d: %w", fixtureID, err)
	}

	updated, err := s.fixtureRepo.UpdateVersioned(ctx, fixtureID, input.ExpectedVersion, repositories.FixturePatch{
		TeamAScore:   input.TeamAScore,
		TeamBScore:   input.TeamBScore,
		ScoreDetails: input.ScoreDetails,
		Status:       input.Status,
		WinnerTeamID: input.WinnerTeamID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrFixtureVersionMismatch):
			return nil, fmt.Errorf("%w: expected version %d", ErrVersionMismatch, input.ExpectedVersion)
		case errors.Is(err, repositories.ErrFixtureNotFound):
			return nil, ErrFixtureNotFound
		default:
			return nil, fmt.Errorf("update fixture %d: %w", fixtureID, err)
		}
	}

	s.appendAuditRecord(ctx, actor.ID, fixture, updated, before, input)

	if completing {
		if err := s.propagateWinner(ctx, updated); err != nil {
			// The update itself is committed; propagation failures are
			// surfaced so the caller knows the bracket needs attention.
			return nil, fmt.Errorf("fixture %d completed but winner propagation failed: %w", fixtureID, err)
		}
	}

	return updated, nil
}

func (s *matchService) validateScoreDetails(ctx context.Context, sportID int, raw json.RawMessage) error {
	sport, err := s.sportRepo.GetByID(ctx, sportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return fmt.Errorf("load sport %d: %w", sportID, err)
	}

	payload, err := models.DecodeScorePayload(sport.Name, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	// The validator's typed error is returned as-is so callers can surface
	// the offending sport/field/reason.
	return scores.Validate(payload)
}

var fixtureTransitions = map[models.FixtureStatus][]models.FixtureStatus{
	models.FixtureStatusScheduled: {models.FixtureStatusLive, models.FixtureStatusCancelled},
	models.FixtureStatusLive:      {models.FixtureStatusCompleted, models.FixtureStatusCancelled},
}

// checkTransition validates the status change requested by input and reports
// whether it transitions the fixture into completed.
func (s *matchService) checkTransition(fixture *models.Fixture, input FixtureUpdateInput) (bool, error) {
	if fixture.Status.Terminal() {
		return false, fmt.Errorf("%w: fixture %d is %s and can no longer be updated",
			ErrInvalidStatusTransition, fixture.ID, fixture.Status)
	}

	if input.Status == nil {
		if input.WinnerTeamID != nil {
			return false, fmt.Errorf("%w: a winner may only be declared when completing the fixture",
				ErrInvalidStatusTransition)
		}
		return false, nil
	}

	next := *input.Status
	if next == fixture.Status {
		return false, nil
	}

	allowed := false
	for _, candidate := range fixtureTransitions[fixture.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, fixture.Status, next)
	}

	if next != models.FixtureStatusCompleted {
		return false, nil
	}

	if fixture.TeamAID == nil || fixture.TeamBID == nil {
		return false, fmt.Errorf("%w: both team slots must be filled before completion",
			ErrInvalidStatusTransition)
	}
	if input.WinnerTeamID == nil {
		scoreA, scoreB := fixture.TeamAScore, fixture.TeamBScore
		if input.TeamAScore != nil {
			scoreA = *input.TeamAScore
		}
		if input.TeamBScore != nil {
			scoreB = *input.TeamBScore
		}
		if scoreA == scoreB {
			return false, ErrDrawNotAllowed
		}
		return false, ErrWinnerRequired
	}
	if *input.WinnerTeamID != *fixture.TeamAID && *input.WinnerTeamID != *fixture.TeamBID {
		return false, fmt.Errorf("%w: team %d", ErrWinnerNotInFixture, *input.WinnerTeamID)
	}
	return true, nil
}

func (s *matchService) appendAuditRecord(ctx context.Context, actorID int, before *models.Fixture, after *models.Fixture, beforeSnapshot []byte, input FixtureUpdateInput) {
	changeType := models.ChangeTypeScoreUpdate
	if input.Status != nil && *input.Status != before.Status {
		changeType = models.ChangeTypeStatusChange
	}

	afterSnapshot, err := json.Marshal(after)
	if err != nil {
		s.logger.Error("failed to snapshot updated fixture for audit",
			slog.Int("fixture_id", after.ID), slog.Any("error", err))
		return
	}

	record := &models.MatchUpdateRecord{
		ID:         uuid.New(),
		FixtureID:  after.ID,
		ChangedBy:  actorID,
		ChangeType: changeType,
		Before:     beforeSnapshot,
		After:      afterSnapshot,
	}
	if err := s.auditRepo.Append(ctx, record); err != nil {
		// The fixture update is already committed; a ledger failure is
		// logged rather than unwinding an applied mutation.
		s.logger.Error("failed to append match update record",
			slog.Int("fixture_id", after.ID), slog.Any("error", err))
	}
}

// propagateWinner advances the completed fixture's winner into the next
// round and keeps round statuses current.
func (s *matchService) propagateWinner(ctx context.Context, fixture *models.Fixture) error {
	rounds, err := s.roundRepo.ListByTournament(ctx, fixture.TournamentID)
	if err != nil {
		return fmt.Errorf("list rounds for tournament %d: %w", fixture.TournamentID, err)
	}

	var sourceRound *models.Round
	for _, round := range rounds {
		if round.ID == fixture.RoundID {
			sourceRound = round
			break
		}
	}
	if sourceRound == nil {
		return fmt.Errorf("round %d not found for fixture %d", fixture.RoundID, fixture.ID)
	}

	engine := brackets.NewEngine(&progressionStore{
		db:             s.db,
		fixtureRepo:    s.fixtureRepo,
		tournamentRepo: s.tournamentRepo,
	})
	if err := engine.Advance(ctx, fixture, sourceRound.RoundNumber, len(rounds)); err != nil {
		return err
	}

	return s.refreshRoundStatuses(ctx, fixture.TournamentID, rounds, sourceRound)
}

// refreshRoundStatuses marks the source round completed once every one of
// its fixtures is terminal, and activates the following round.
func (s *matchService) refreshRoundStatuses(ctx context.Context, tournamentID int, rounds []*models.Round, sourceRound *models.Round) error {
	fixtures, err := s.fixtureRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list fixtures for tournament %d: %w", tournamentID, err)
	}

	for _, f := range fixtures {
		if f.RoundID == sourceRound.ID && !f.Status.Terminal() {
			return nil
		}
	}

	if sourceRound.Status != models.RoundStatusCompleted {
		if err := s.roundRepo.UpdateStatus(ctx, s.db, sourceRound.ID, models.RoundStatusCompleted); err != nil {
			return fmt.Errorf("complete round %d: %w", sourceRound.ID, err)
		}
	}
	for _, round := range rounds {
		if round.RoundNumber == sourceRound.RoundNumber+1 && round.Status == models.RoundStatusPending {
			if err := s.roundRepo.UpdateStatus(ctx, s.db, round.ID, models.RoundStatusActive); err != nil {
				return fmt.Errorf("activate round %d: %w", round.ID, err)
			}
		}
	}
	return nil
}

func (s *matchService) GetFixture(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return fixture, nil
}

func (s *matchService) ListFixtureUpdates(ctx context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error) {
	if _, err := s.fixtureRepo.GetByID(ctx, fixtureID); err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return s.auditRepo.ListByFixture(ctx, fixtureID)
}

// progressionStore adapts the repositories to the bracket engine's storage
// surface.
type progressionStore struct {
	db             *sql.DB
	fixtureRepo    repositories.FixtureRepository
	tournamentRepo repositories.TournamentRepository
}

func (p *progressionStore) FixtureByRoundPosition(ctx context.Context, tournamentID, roundNumber, bracketPosition int) (*models.Fixture, error) {
	fixture, err := p.fixtureRepo.GetByRoundPosition(ctx, tournamentID, roundNumber, bracketPosition)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fixture, nil
}

func (p *progressionStore) SetFixtureTeam(ctx context.Context, fixtureID int, slotA bool, teamID int) error {
	return p.fixtureRepo.SetTeamSlot(ctx, p.db, fixtureID, slotA, teamID)
}

func (p *progressionStore) CompleteTournament(ctx context.Context, tournamentID, winnerTeamID int) error {
	return p.tournamentRepo.SetWinnerAndComplete(ctx, p.db, tournamentID, winnerTeamID)
}
