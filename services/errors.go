package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping. Each
// belongs to one disposition category: authorization and validation failures
// are final, concurrency and throttling failures are retryable after
// corrective action, infra failures are retryable with backoff.
var (
	// Authorization
	ErrUnauthorized     = errors.New("authentication required")
	ErrPermissionDenied = errors.New("operation not allowed for the current user")
	ErrSportNotAssigned = errors.New("moderator is not assigned to this sport")
	ErrVenueNotAssigned = errors.New("moderator is not assigned to this venue")

	// Validation
	ErrInvalidScore            = errors.New("invalid score payload")
	ErrInvalidStatusTransition = errors.New("invalid fixture status transition")
	ErrWinnerRequired          = errors.New("a completed fixture requires a winner")
	ErrDrawNotAllowed          = errors.New("a single-elimination fixture cannot end in a draw")
	ErrWinnerNotInFixture      = errors.New("winner must be one of the fixture's teams")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrUnsupportedLogoType     = errors.New("unsupported logo content type")
	ErrInvalidTournamentStatus = errors.New("invalid tournament status transition")

	// Concurrency
	ErrVersionMismatch = errors.New("fixture was modified concurrently, refetch and retry")

	// Throttling
	ErrRateLimited = errors.New("too many updates to this fixture, slow down")

	// Not-found / state
	ErrFixtureNotFound    = errors.New("fixture not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSportNotFound      = errors.New("sport not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnsupportedFormat  = errors.New("bracket generation supports single elimination only")
	ErrNotEnoughTeams     = errors.New("not enough registered teams to generate a bracket")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
)
