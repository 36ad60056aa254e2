package handlers

import (
	"net/http"

	"github.com/sporthall/tournament-core/middleware"
	"github.com/sporthall/tournament-core/services"
)

type FixtureHandler struct {
	matchService services.MatchService
	authService  services.AuthService
}

func NewFixtureHandler(matchService services.MatchService, authService services.AuthService) *FixtureHandler {
	return &FixtureHandler{
		matchService: matchService,
		authService:  authService,
	}
}

// Update applies a moderator's score or status change to a fixture. The
// request must carry the expected_version the client last read, a stale
// version is rejected with VERSION_MISMATCH and nothing is written.
func (h *FixtureHandler) Update(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, codeUnauthorized, "failed to identify current user")
		return
	}

	actor, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input services.FixtureUpdateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.matchService.UpdateFixture(r.Context(), actor, fixtureID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) Get(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.matchService.GetFixture(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListUpdates returns the audit trail of a fixture, newest first.
func (h *FixtureHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	records, err := h.matchService.ListFixtureUpdates(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updates": records}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
