package api

import (
	"net/http"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the routes. Routes under /api/auth/me, /api/auth/editUser
// and every create/delete route require an access token.
func NewRouter(h *Handler, tokens AccessTokenVerifier, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(rescue(log))
	r.Use(logRequests(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", common.AuthorizationHeaderName, "Content-Type", common.RequestIDHeaderName},
		ExposedHeaders:   []string{common.RequestIDHeaderName},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAuth := RequireAuth(tokens, log)

	r.Get("/", h.Hello)
	r.Get("/health", h.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refreshToken", h.RefreshToken)
		r.Post("/logout", h.Logout)

		r.With(requireAuth).Get("/me", h.Me)
		r.With(requireAuth).Put("/editUser", h.EditUser)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.With(requireAuth).Post("/create", h.CreateEvent)
		r.With(requireAuth).Delete("/{id}", h.DeleteEvent)
	})

	r.Route("/api/complaints", func(r chi.Router) {
		r.Get("/", h.ListComplaints)
		r.Get("/{id}/photos", h.ComplaintPhotos)
		r.With(requireAuth).Post("/create", h.CreateComplaint)
		r.With(requireAuth).Delete("/{id}", h.DeleteComplaint)
	})

	return r
}
