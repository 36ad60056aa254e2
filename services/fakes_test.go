package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sort"
	"time"

	"github.com/sporthall/tournament-core/models"
	"github.com/sporthall/tournament-core/repositories"
)

func anyTime() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

// stubDB builds a *sql.DB over a do-nothing driver so service code that
// opens transactions can run against the repository fakes. A non-nil
// commitErr makes every Commit fail.
func stubDB(commitErr error) *sql.DB {
	return sql.OpenDB(stubConnector{commitErr: commitErr})
}

type stubConnector struct {
	commitErr error
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{commitErr: c.commitErr}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{connector: c} }

type stubDriver struct {
	connector stubConnector
}

func (d stubDriver) Open(string) (driver.Conn, error) {
	return d.connector.Connect(context.Background())
}

type stubConn struct {
	commitErr error
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("stub connection does not prepare statements")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return stubTx{commitErr: c.commitErr}, nil
}

type stubTx struct {
	commitErr error
}

func (t stubTx) Commit() error   { return t.commitErr }
func (t stubTx) Rollback() error { return nil }

// In-memory repository fakes shared by the service tests. They mirror the
// Postgres implementations' contracts, including sentinel errors and the
// version bump on every fixture mutation.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	}
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.add(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.DeletedAt == nil {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) SetWinnerAndComplete(_ context.Context, _ repositories.SQLExecutor, id, winnerTeamID int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.TournamentStatusCompleted
	t.WinnerTeamID = &winnerTeamID
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) SoftDelete(_ context.Context, id int) error {
	t, ok := r.tournaments[id]
	if !ok || t.DeletedAt != nil {
		return repositories.ErrTournamentNotFound
	}
	now := anyTime()
	t.DeletedAt = &now
	return nil
}

type fakeRoundRepo struct {
	rounds []*models.Round
	nextID int

	// beforeCreate, when set, runs ahead of the next Create. Tests use it to
	// interleave a concurrent writer between the generation pre-check and
	// the persist step.
	beforeCreate func() error
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{nextID: 1}
}

func (r *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	if r.beforeCreate != nil {
		if err := r.beforeCreate(); err != nil {
			return err
		}
	}
	for _, existing := range r.rounds {
		if existing.TournamentID == round.TournamentID && existing.RoundNumber == round.RoundNumber {
			return repositories.ErrRoundConflict
		}
	}
	round.ID = r.nextID
	r.nextID++
	clone := *round
	r.rounds = append(r.rounds, &clone)
	return nil
}

func (r *fakeRoundRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Round, error) {
	var out []*models.Round
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID {
			clone := *round
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r *fakeRoundRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RoundStatus) error {
	for _, round := range r.rounds {
		if round.ID == id {
			round.Status = status
			return nil
		}
	}
	return fmt.Errorf("round %d not found", id)
}

type fakeFixtureRepo struct {
	fixtures map[int]*models.Fixture
	rounds   *fakeRoundRepo
	nextID   int
}

func newFakeFixtureRepo(rounds *fakeRoundRepo) *fakeFixtureRepo {
	return &fakeFixtureRepo{fixtures: make(map[int]*models.Fixture), rounds: rounds, nextID: 1}
}

func (r *fakeFixtureRepo) add(f *models.Fixture) *models.Fixture {
	if f.ID == 0 {
		f.ID = r.nextID
		r.nextID++
	}
	r.fixtures[f.ID] = f
	return f
}

func (r *fakeFixtureRepo) Create(_ context.Context, _ repositories.SQLExecutor, fixture *models.Fixture) error {
	for _, existing := range r.fixtures {
		if existing.RoundID == fixture.RoundID && existing.BracketPosition == fixture.BracketPosition {
			return repositories.ErrFixturePositionConflict
		}
	}
	fixture.ID = r.nextID
	r.nextID++
	if fixture.Version == 0 {
		// The fixtures table defaults version to 1 and returns it on insert.
		fixture.Version = 1
	}
	clone := *fixture
	r.fixtures[fixture.ID] = &clone
	return nil
}

func (r *fakeFixtureRepo) GetByID(_ context.Context, id int) (*models.Fixture, error) {
	f, ok := r.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *fakeFixtureRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Fixture, error) {
	var out []*models.Fixture
	for _, f := range r.fixtures {
		if f.TournamentID == tournamentID {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFixtureRepo) GetByRoundPosition(ctx context.Context, tournamentID, roundNumber, bracketPosition int) (*models.Fixture, error) {
	for _, round := range r.rounds.rounds {
		if round.TournamentID != tournamentID || round.RoundNumber != roundNumber {
			continue
		}
		for _, f := range r.fixtures {
			if f.RoundID == round.ID && f.BracketPosition == bracketPosition {
				clone := *f
				return &clone, nil
			}
		}
	}
	return nil, repositories.ErrFixtureNotFound
}

func (r *fakeFixtureRepo) UpdateVersioned(_ context.Context, id, expectedVersion int, patch repositories.FixturePatch) (*models.Fixture, error) {
	f, ok := r.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	if f.Version != expectedVersion {
		return nil, repositories.ErrFixtureVersionMismatch
	}
	if patch.TeamAScore != nil {
		f.TeamAScore = *patch.TeamAScore
	}
	if patch.TeamBScore != nil {
		f.TeamBScore = *patch.TeamBScore
	}
	if patch.ScoreDetails != nil {
		f.ScoreDetails = patch.ScoreDetails
	}
	if patch.Status != nil {
		f.Status = *patch.Status
	}
	if patch.WinnerTeamID != nil {
		f.WinnerTeamID = patch.WinnerTeamID
	}
	f.Version++
	clone := *f
	return &clone, nil
}

func (r *fakeFixtureRepo) SetTeamSlot(_ context.Context, _ repositories.SQLExecutor, id int, slotA bool, teamID int) error {
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if slotA {
		f.TeamAID = &teamID
	} else {
		f.TeamBID = &teamID
	}
	f.Version++
	return nil
}

func (r *fakeFixtureRepo) CompleteWithWinner(_ context.Context, _ repositories.SQLExecutor, id, winnerTeamID int) error {
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	f.Status = models.FixtureStatusCompleted
	f.WinnerTeamID = &winnerTeamID
	f.Version++
	return nil
}

type fakeSportRepo struct {
	sports map[int]*models.Sport
}

func newFakeSportRepo(sports ...*models.Sport) *fakeSportRepo {
	r := &fakeSportRepo{sports: make(map[int]*models.Sport)}
	for _, s := range sports {
		r.sports[s.ID] = s
	}
	return r
}

func (r *fakeSportRepo) GetByID(_ context.Context, id int) (*models.Sport, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSportRepo) List(_ context.Context) ([]*models.Sport, error) {
	var out []*models.Sport
	for _, s := range r.sports {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAuditRepo struct {
	records []*models.MatchUpdateRecord
}

func (r *fakeAuditRepo) Append(_ context.Context, record *models.MatchUpdateRecord) error {
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *fakeAuditRepo) ListByFixture(_ context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error) {
	var out []*models.MatchUpdateRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].FixtureID == fixtureID {
			clone := *r.records[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users       map[int]*models.User
	byEmail     map[string]*models.User
	assignments map[int][]*models.ModeratorAssignment
	nextID      int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[int]*models.User),
		byEmail:     make(map[string]*models.User),
		assignments: make(map[int][]*models.ModeratorAssignment),
		nextID:      1,
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, taken := r.byEmail[user.Email]; taken {
		return repositories.ErrUserEmailConflict
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) ListAssignments(_ context.Context, userID int) ([]*models.ModeratorAssignment, error) {
	return r.assignments[userID], nil
}

type fakeTeamRepo struct {
	entries map[int][]*models.TournamentTeam
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{entries: make(map[int][]*models.TournamentTeam)}
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	return &models.Team{ID: id, Name: fmt.Sprintf("team-%d", id)}, nil
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentTeam, error) {
	out := make([]*models.TournamentTeam, 0, len(r.entries[tournamentID]))
	for _, e := range r.entries[tournamentID] {
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}
