package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/sporthall/tournament-core/scores"
	"github.com/sporthall/tournament-core/services"
)

type jsonResponse map[string]interface{}

// Stable machine-readable error codes returned in the error envelope.
// Clients branch on the code, not on the message text.
const (
	codeUnauthorized       = "UNAUTHORIZED"
	codePermissionDenied   = "PERMISSION_DENIED"
	codeSportNotAssigned   = "SPORT_NOT_ASSIGNED"
	codeVenueNotAssigned   = "VENUE_NOT_ASSIGNED"
	codeInvalidScore       = "INVALID_SCORE"
	codeInvalidSportData   = "INVALID_SPORT_DATA"
	codeInvalidStatus      = "INVALID_STATUS"
	codeVersionMismatch    = "VERSION_MISMATCH"
	codeRateLimited        = "RATE_LIMITED"
	codeFixtureNotFound    = "FIXTURE_NOT_FOUND"
	codeTournamentNotFound = "TOURNAMENT_NOT_FOUND"
	codeNotFound           = "NOT_FOUND"
	codeConflict           = "CONFLICT"
	codeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	codeBadRequest         = "BAD_REQUEST"
	codeDatabaseError      = "DATABASE_ERROR"
	codeUnknown            = "UNKNOWN"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // programmer error, a non-pointer was passed
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	env := jsonResponse{"error": jsonResponse{"code": code, "message": message}}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err), slog.String("path", r.URL.Path))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.Any("error", err), slog.String("path", r.URL.Path))
	errorResponse(w, r, http.StatusInternalServerError, codeUnknown,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, code string) {
	errorResponse(w, r, http.StatusNotFound, code, "the requested resource could not be found")
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s URL parameter: %q", param, raw)
	}
	return id, nil
}

// mapServiceErrorToHTTP translates service-layer errors into HTTP responses
// with stable error codes.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var invalidData *scores.InvalidDataError

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		errorResponse(w, r, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		errorResponse(w, r, http.StatusForbidden, codePermissionDenied, err.Error())
	case errors.Is(err, services.ErrSportNotAssigned):
		errorResponse(w, r, http.StatusForbidden, codeSportNotAssigned, err.Error())
	case errors.Is(err, services.ErrVenueNotAssigned):
		errorResponse(w, r, http.StatusForbidden, codeVenueNotAssigned, err.Error())

	case errors.As(err, &invalidData):
		errorResponse(w, r, http.StatusUnprocessableEntity, codeInvalidSportData, err.Error())
	case errors.Is(err, services.ErrInvalidScore):
		errorResponse(w, r, http.StatusUnprocessableEntity, codeInvalidScore, err.Error())
	case errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrWinnerRequired),
		errors.Is(err, services.ErrDrawNotAllowed),
		errors.Is(err, services.ErrWinnerNotInFixture),
		errors.Is(err, services.ErrInvalidTournamentStatus):
		errorResponse(w, r, http.StatusConflict, codeInvalidStatus, err.Error())

	case errors.Is(err, services.ErrVersionMismatch):
		errorResponse(w, r, http.StatusConflict, codeVersionMismatch, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		errorResponse(w, r, http.StatusTooManyRequests, codeRateLimited, err.Error())

	case errors.Is(err, services.ErrFixtureNotFound):
		notFoundResponse(w, r, codeFixtureNotFound)
	case errors.Is(err, services.ErrTournamentNotFound):
		notFoundResponse(w, r, codeTournamentNotFound)
	case errors.Is(err, services.ErrSportNotFound),
		errors.Is(err, services.ErrUserNotFound):
		notFoundResponse(w, r, codeNotFound)

	case errors.Is(err, services.ErrUnsupportedFormat):
		errorResponse(w, r, http.StatusBadRequest, codeUnsupportedFormat, err.Error())
	case errors.Is(err, services.ErrNotEnoughTeams),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrUnsupportedLogoType):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		errorResponse(w, r, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, services.ErrAuthEmailTaken):
		errorResponse(w, r, http.StatusConflict, codeConflict, err.Error())

	default:
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			slog.Error("database error", slog.Any("error", err), slog.String("path", r.URL.Path))
			errorResponse(w, r, http.StatusInternalServerError, codeDatabaseError,
				"a storage error prevented the request from completing")
			return
		}
		serverErrorResponse(w, r, err)
	}
}
