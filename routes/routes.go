package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sporthall/tournament-core/handlers"
	"github.com/sporthall/tournament-core/middleware"
	"github.com/sporthall/tournament-core/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Fixture    *handlers.FixtureHandler
}

func InitRoutes(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/users/signup", h.Auth.Register)
	router.Post("/users/signin", h.Auth.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read access to tournaments and brackets.
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/bracket", h.Bracket.Get)

		// Admin-only tournament management.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}/status", h.Tournament.UpdateStatus)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
			r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
			r.Post("/{tournamentID}/generate-bracket", h.Bracket.Generate)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Get("/{fixtureID}", h.Fixture.Get)
		r.Get("/{fixtureID}/updates", h.Fixture.ListUpdates)

		// Score updates require a token. Fine-grained sport and venue checks
		// happen in the service layer against moderator assignments.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleModerator))

			r.Patch("/{fixtureID}", h.Fixture.Update)
		})
	})

	return router
}
