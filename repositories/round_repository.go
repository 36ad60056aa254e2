package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sporthall/tournament-core/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundConflict is returned when the unique (tournament_id,
	// round_number) constraint fires, i.e. a concurrent request already
	// generated this round.
	ErrRoundConflict = errors.New("round already exists for this tournament")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (tournament_id, round_number, round_name, total_matches, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		round.TournamentID,
		round.RoundNumber,
		round.RoundName,
		round.TotalMatches,
		round.Status,
	).Scan(&round.ID)

	if err != nil {
		if isUniqueViolation(err, "rounds_tournament_id_round_number_key") {
			return ErrRoundConflict
		}
		return err
	}
	return nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	query := `
		SELECT id, tournament_id, round_number, round_name, total_matches, status
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY round_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round := &models.Round{}
		if scanErr := rows.Scan(
			&round.ID,
			&round.TournamentID,
			&round.RoundNumber,
			&round.RoundName,
			&round.TotalMatches,
			&round.Status,
		); scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error {
	query := `UPDATE rounds SET status = $1 WHERE id = $2`

	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrRoundNotFound
	}
	return nil
}
