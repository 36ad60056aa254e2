package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sporthall/tournament-core/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository is the team registry the bracket engine consumes: the
// ordered, seeded entry list of a tournament.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, sport_id, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.SportID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error) {
	query := `
		SELECT tt.tournament_id, tt.team_id, tt.seed, t.id, t.name, t.sport_id, t.created_at
		FROM tournament_teams tt
		JOIN teams t ON t.id = tt.team_id
		WHERE tt.tournament_id = $1
		ORDER BY tt.seed ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.TournamentTeam, 0)
	for rows.Next() {
		entry := &models.TournamentTeam{Team: &models.Team{}}
		if scanErr := rows.Scan(
			&entry.TournamentID,
			&entry.TeamID,
			&entry.Seed,
			&entry.Team.ID,
			&entry.Team.Name,
			&entry.Team.SportID,
			&entry.Team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
