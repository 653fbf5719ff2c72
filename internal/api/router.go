package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attuneweb/attune/internal/adaptservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// onEvent, if non-nil, is invoked after profile mutations.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *adaptservice.Service, authEnabled bool, token string, onEvent ProfileEventFunc, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, onEvent)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Profiles CRUD.
	r.Get("/profiles", h.ListProfiles)
	r.Get("/profiles/{userID}", h.GetProfile)
	r.Post("/profiles/{userID}", h.CreateProfile)
	r.Put("/profiles/{userID}", h.UpdateProfile)
	r.Delete("/profiles/{userID}", h.DeleteProfile)

	// Questionnaire-driven profile derivation.
	r.Post("/profiles/{userID}/derive", h.DeriveProfile)

	// Content transformation.
	r.Post("/transform/text", h.TransformText)
	r.Post("/transform/page", h.TransformPage)

	// Visual distraction classification.
	r.Post("/visuals/classify", h.ClassifyVisuals)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
