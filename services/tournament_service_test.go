package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sporthall/tournament-core/models"
)

func newTournamentService(tournaments *fakeTournamentRepo) TournamentService {
	sports := newFakeSportRepo(&models.Sport{ID: 1, Name: models.SportFootball})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTournamentService(tournaments, sports, nil, logger)
}

func TestCreateTournament(t *testing.T) {
	service := newTournamentService(newFakeTournamentRepo())
	ctx := context.Background()

	t.Run("defaults to single elimination and draft", func(t *testing.T) {
		tournament, err := service.Create(ctx, CreateTournamentInput{Name: "  Winter Cup ", SportID: 1})
		require.NoError(t, err)
		assert.Equal(t, "Winter Cup", tournament.Name)
		assert.Equal(t, models.TypeSingleElimination, tournament.TournamentType)
		assert.Equal(t, models.TournamentStatusDraft, tournament.Status)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := service.Create(ctx, CreateTournamentInput{Name: "   ", SportID: 1})
		assert.ErrorIs(t, err, ErrTournamentNameRequired)
	})

	t.Run("unknown sport rejected", func(t *testing.T) {
		_, err := service.Create(ctx, CreateTournamentInput{Name: "Ghost Cup", SportID: 99})
		assert.ErrorIs(t, err, ErrSportNotFound)
	})
}

func TestUpdateTournamentStatus(t *testing.T) {
	tournaments := newFakeTournamentRepo()
	service := newTournamentService(tournaments)
	ctx := context.Background()

	tournaments.add(&models.Tournament{ID: 1, Name: "Cup", SportID: 1, Status: models.TournamentStatusDraft})

	updated, err := service.UpdateStatus(ctx, 1, models.TournamentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusActive, updated.Status)

	// Active tournaments cannot return to draft.
	_, err = service.UpdateStatus(ctx, 1, models.TournamentStatusDraft)
	assert.ErrorIs(t, err, ErrInvalidTournamentStatus)

	// Repeating the current status is a no-op.
	updated, err = service.UpdateStatus(ctx, 1, models.TournamentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusActive, updated.Status)
}

func TestDeleteTournamentHidesIt(t *testing.T) {
	tournaments := newFakeTournamentRepo()
	service := newTournamentService(tournaments)
	ctx := context.Background()

	tournaments.add(&models.Tournament{ID: 1, Name: "Cup", SportID: 1, Status: models.TournamentStatusDraft})

	require.NoError(t, service.Delete(ctx, 1))

	_, err := service.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	err = service.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
