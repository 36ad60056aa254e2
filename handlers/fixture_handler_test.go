package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sporthall/tournament-core/handlers"
	"github.com/sporthall/tournament-core/middleware"
	"github.com/sporthall/tournament-core/models"
	"github.com/sporthall/tournament-core/routes"
	"github.com/sporthall/tournament-core/services"
)

const testJWTSecret = "test-secret"

type stubMatchService struct {
	updateFn func(ctx context.Context, actor *models.User, fixtureID int, input services.FixtureUpdateInput) (*models.Fixture, error)
	fixture  *models.Fixture
}

func (s *stubMatchService) UpdateFixture(ctx context.Context, actor *models.User, fixtureID int, input services.FixtureUpdateInput) (*models.Fixture, error) {
	return s.updateFn(ctx, actor, fixtureID, input)
}

func (s *stubMatchService) GetFixture(_ context.Context, fixtureID int) (*models.Fixture, error) {
	if s.fixture == nil || s.fixture.ID != fixtureID {
		return nil, services.ErrFixtureNotFound
	}
	return s.fixture, nil
}

func (s *stubMatchService) ListFixtureUpdates(_ context.Context, fixtureID int) ([]*models.MatchUpdateRecord, error) {
	if s.fixture == nil || s.fixture.ID != fixtureID {
		return nil, services.ErrFixtureNotFound
	}
	return nil, nil
}

type stubAuthService struct {
	user *models.User
}

func (s *stubAuthService) Register(context.Context, services.RegisterInput) (*models.User, error) {
	return nil, services.ErrUserNotFound
}

func (s *stubAuthService) Login(context.Context, services.LoginInput) (*models.User, error) {
	return nil, services.ErrAuthInvalidCredentials
}

func (s *stubAuthService) GetUser(_ context.Context, id int) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, services.ErrUserNotFound
	}
	return s.user, nil
}

func newTestRouter(match services.MatchService, auth services.AuthService) http.Handler {
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(auth, testJWTSecret),
		Fixture: handlers.NewFixtureHandler(match, auth),
	}
	return routes.InitRoutes(h, middleware.NewAuthenticator(testJWTSecret))
}

func signToken(t *testing.T, userID int, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func patchFixture(handler http.Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/fixtures/1", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPatchFixtureRequiresToken(t *testing.T) {
	handler := newTestRouter(&stubMatchService{}, &stubAuthService{})

	rec := patchFixture(handler, "", `{"expected_version":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatchFixtureViewerForbidden(t *testing.T) {
	handler := newTestRouter(&stubMatchService{}, &stubAuthService{})

	rec := patchFixture(handler, signToken(t, 7, models.RoleViewer), `{"expected_version":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPatchFixtureHappyPath(t *testing.T) {
	moderator := &models.User{ID: 7, Role: models.RoleModerator}
	match := &stubMatchService{
		updateFn: func(_ context.Context, actor *models.User, fixtureID int, input services.FixtureUpdateInput) (*models.Fixture, error) {
			if actor == nil || actor.ID != moderator.ID {
				return nil, fmt.Errorf("unexpected actor %+v", actor)
			}
			return &models.Fixture{ID: fixtureID, Version: input.ExpectedVersion + 1, Status: models.FixtureStatusLive}, nil
		},
	}
	handler := newTestRouter(match, &stubAuthService{user: moderator})

	rec := patchFixture(handler, signToken(t, 7, models.RoleModerator), `{"expected_version":3,"team_a_score":42}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Fixture models.Fixture `json:"fixture"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 4, payload.Fixture.Version)
}

func TestPatchFixtureErrorCodes(t *testing.T) {
	moderator := &models.User{ID: 7, Role: models.RoleModerator}

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"version mismatch", services.ErrVersionMismatch, http.StatusConflict, "VERSION_MISMATCH"},
		{"rate limited", services.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"sport not assigned", services.ErrSportNotAssigned, http.StatusForbidden, "SPORT_NOT_ASSIGNED"},
		{"venue not assigned", services.ErrVenueNotAssigned, http.StatusForbidden, "VENUE_NOT_ASSIGNED"},
		{"draw", services.ErrDrawNotAllowed, http.StatusConflict, "INVALID_STATUS"},
		{"not found", services.ErrFixtureNotFound, http.StatusNotFound, "FIXTURE_NOT_FOUND"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match := &stubMatchService{
				updateFn: func(context.Context, *models.User, int, services.FixtureUpdateInput) (*models.Fixture, error) {
					return nil, tc.serviceErr
				},
			}
			handler := newTestRouter(match, &stubAuthService{user: moderator})

			rec := patchFixture(handler, signToken(t, 7, models.RoleModerator), `{"expected_version":1}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var envelope errorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tc.wantCode, envelope.Error.Code)
		})
	}
}

func TestGetFixturePublic(t *testing.T) {
	match := &stubMatchService{fixture: &models.Fixture{ID: 1, Version: 2, Status: models.FixtureStatusLive}}
	handler := newTestRouter(match, &stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/fixtures/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/fixtures/9", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
