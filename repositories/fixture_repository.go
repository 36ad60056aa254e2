package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sporthall/tournament-core/models"
)

var (
	ErrFixtureNotFound = errors.New("fixture not found")

	// ErrFixtureVersionMismatch means the conditional write matched no row
	// although the fixture exists: the caller's expected version is stale.
	ErrFixtureVersionMismatch = errors.New("fixture was modified by another update")

	ErrFixturePositionConflict = errors.New("bracket position already taken in this round")
)

// FixturePatch carries the mutable fields of a fixture update. Nil fields are
// left untouched.
type FixturePatch struct {
	TeamAScore   *int
	TeamBScore   *int
	ScoreDetails json.RawMessage
	Status       *models.FixtureStatus
	WinnerTeamID *int
}

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
	GetByRoundPosition(ctx context.Context, tournamentID, roundNumber, bracketPosition int) (*models.Fixture, error)

	// UpdateVersioned applies patch in a single conditional statement
	// guarded by expectedVersion, incrementing the version by exactly one.
	// It returns the updated row, ErrFixtureVersionMismatch on a stale
	// version, or ErrFixtureNotFound.
	UpdateVersioned(ctx context.Context, id, expectedVersion int, patch FixturePatch) (*models.Fixture, error)

	// SetTeamSlot fills one side of a fixture during winner propagation or
	// bye advancement. It also bumps the version: slot writes count as
	// mutations.
	SetTeamSlot(ctx context.Context, exec SQLExecutor, id int, slotA bool, teamID int) error

	// CompleteWithWinner marks a bye fixture completed at generation time.
	CompleteWithWinner(ctx context.Context, exec SQLExecutor, id, winnerTeamID int) error
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

const fixtureColumns = `id, tournament_id, round_id, bracket_position, team_a_id, team_b_id,
		team_a_score, team_b_score, score_details, status, winner_team_id, version,
		scheduled_at, venue_id, created_at`

func scanFixture(row interface{ Scan(...interface{}) error }) (*models.Fixture, error) {
	f := &models.Fixture{}
	var details []byte
	err := row.Scan(
		&f.ID,
		&f.TournamentID,
		&f.RoundID,
		&f.BracketPosition,
		&f.TeamAID,
		&f.TeamBID,
		&f.TeamAScore,
		&f.TeamBScore,
		&details,
		&f.Status,
		&f.WinnerTeamID,
		&f.Version,
		&f.ScheduledAt,
		&f.VenueID,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		f.ScoreDetails = json.RawMessage(details)
	}
	return f, nil
}

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error {
	query := `
		INSERT INTO fixtures
			(tournament_id, round_id, bracket_position, team_a_id, team_b_id, status, scheduled_at, venue_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at`

	err := exec.QueryRowContext(ctx, query,
		fixture.TournamentID,
		fixture.RoundID,
		fixture.BracketPosition,
		fixture.TeamAID,
		fixture.TeamBID,
		fixture.Status,
		fixture.ScheduledAt,
		fixture.VenueID,
	).Scan(&fixture.ID, &fixture.Version, &fixture.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "fixtures_round_id_bracket_position_key") {
			return ErrFixturePositionConflict
		}
		return err
	}
	return nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`

	fixture, err := scanFixture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return fixture, nil
}

func (r *postgresFixtureRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	query := `
		SELECT ` + fixtureColumns + `
		FROM fixtures
		WHERE tournament_id = $1
		ORDER BY round_id ASC, bracket_position ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		fixture, scanErr := scanFixture(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, rows.Err()
}

func (r *postgresFixtureRepository) GetByRoundPosition(ctx context.Context, tournamentID, roundNumber, bracketPosition int) (*models.Fixture, error) {
	query := `
		SELECT f.id, f.tournament_id, f.round_id, f.bracket_position, f.team_a_id, f.team_b_id,
			f.team_a_score, f.team_b_score, f.score_details, f.status, f.winner_team_id, f.version,
			f.scheduled_at, f.venue_id, f.created_at
		FROM fixtures f
		JOIN rounds r ON r.id = f.round_id
		WHERE f.tournament_id = $1 AND r.round_number = $2 AND f.bracket_position = $3`

	fixture, err := scanFixture(r.db.QueryRowContext(ctx, query, tournamentID, roundNumber, bracketPosition))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return fixture, nil
}

func (r *postgresFixtureRepository) UpdateVersioned(ctx context.Context, id, expectedVersion int, patch FixturePatch) (*models.Fixture, error) {
	query := `
		UPDATE fixtures
		SET team_a_score = COALESCE($3, team_a_score),
		    team_b_score = COALESCE($4, team_b_score),
		    score_details = COALESCE($5, score_details),
		    status = COALESCE($6, status),
		    winner_team_id = COALESCE($7, winner_team_id),
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + fixtureColumns

	var details interface{}
	if patch.ScoreDetails != nil {
		details = []byte(patch.ScoreDetails)
	}
	var status interface{}
	if patch.Status != nil {
		status = string(*patch.Status)
	}

	fixture, err := scanFixture(r.db.QueryRowContext(ctx, query,
		id,
		expectedVersion,
		patch.TeamAScore,
		patch.TeamBScore,
		details,
		status,
		patch.WinnerTeamID,
	))
	if err == nil {
		return fixture, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// No row matched: distinguish a stale version from a missing fixture.
	var exists bool
	probeErr := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fixtures WHERE id = $1)`, id).Scan(&exists)
	if probeErr != nil {
		return nil, probeErr
	}
	if exists {
		return nil, ErrFixtureVersionMismatch
	}
	return nil, ErrFixtureNotFound
}

func (r *postgresFixtureRepository) SetTeamSlot(ctx context.Context, exec SQLExecutor, id int, slotA bool, teamID int) error {
	query := `UPDATE fixtures SET team_b_id = $1, version = version + 1 WHERE id = $2`
	if slotA {
		query = `UPDATE fixtures SET team_a_id = $1, version = version + 1 WHERE id = $2`
	}

	result, err := exec.ExecContext(ctx, query, teamID, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrFixtureNotFound
	}
	return nil
}

func (r *postgresFixtureRepository) CompleteWithWinner(ctx context.Context, exec SQLExecutor, id, winnerTeamID int) error {
	query := `
		UPDATE fixtures
		SET status = $1, winner_team_id = $2, version = version + 1
		WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, models.FixtureStatusCompleted, winnerTeamID, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrFixtureNotFound
	}
	return nil
}
