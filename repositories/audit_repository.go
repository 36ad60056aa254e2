package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sporthall/tournament-core/models"
)

// AuditRepository is the append-only sink for fixture update records.
type AuditRepository interface {
	Append(ctx context.Context, record *models.MatchUpdateRecord) error
	ListByFixture(ctx context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error)
}

type postgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

func (r *postgresAuditRepository) Append(ctx context.Context, record *models.MatchUpdateRecord) error {
	query := `
		INSERT INTO match_update_records
			(id, fixture_id, changed_by, change_type, before_snapshot, after_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING changed_at`

	return r.db.QueryRowContext(ctx, query,
		record.ID,
		record.FixtureID,
		record.ChangedBy,
		record.ChangeType,
		[]byte(record.Before),
		[]byte(record.After),
	).Scan(&record.ChangedAt)
}

func (r *postgresAuditRepository) ListByFixture(ctx context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error) {
	query := `
		SELECT id, fixture_id, changed_by, change_type, changed_at, before_snapshot, after_snapshot
		FROM match_update_records
		WHERE fixture_id = $1
		ORDER BY changed_at ASC`

	rows, err := r.db.QueryContext(ctx, query, fixtureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.MatchUpdateRecord, 0)
	for rows.Next() {
		record := &models.MatchUpdateRecord{}
		var before, after []byte
		if scanErr := rows.Scan(
			&record.ID,
			&record.FixtureID,
			&record.ChangedBy,
			&record.ChangeType,
			&record.ChangedAt,
			&before,
			&after,
		); scanErr != nil {
			return nil, scanErr
		}
		record.Before = json.RawMessage(before)
		record.After = json.RawMessage(after)
		records = append(records, record)
	}
	return records, rows.Err()
}
