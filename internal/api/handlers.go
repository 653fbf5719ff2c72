package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/attuneweb/attune/internal/adaptservice"
	"github.com/attuneweb/attune/internal/apperr"
	"github.com/attuneweb/attune/internal/profile"
	"github.com/attuneweb/attune/internal/profilestore"
)

// ProfileEventFunc is called after a profile mutation so the SSE layer can
// notify connected clients. kind is one of "created", "updated", "deleted".
type ProfileEventFunc func(kind, userID string)

// Handler holds API route handlers.
type Handler struct {
	svc     *adaptservice.Service
	onEvent ProfileEventFunc
}

// NewHandler creates a new Handler. onEvent may be nil.
func NewHandler(svc *adaptservice.Service, onEvent ProfileEventFunc) *Handler {
	return &Handler{svc: svc, onEvent: onEvent}
}

func (h *Handler) notify(kind, userID string) {
	if h.onEvent != nil {
		h.onEvent(kind, userID)
	}
}

// ListProfiles handles GET /api/profiles.
//
//	@Summary		List stored profiles with pagination
//	@Tags			profiles
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	ProfileListResponse
//	@Security		BearerAuth
//	@Router			/profiles [get]
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	records, total, err := h.svc.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list profiles failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if records == nil {
		records = []profilestore.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": records,
		"total":    total,
	})
}

// GetProfile handles GET /api/profiles/{userID}.
//
//	@Summary		Get a user's cognitive profile
//	@Tags			profiles
//	@Produce		json
//	@Param			userID	path		string	true	"User identifier"
//	@Success		200		{object}	profile.Profile
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profiles/{userID} [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("profile not found"))
		} else {
			slog.Error("get profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProfile handles POST /api/profiles/{userID}.
//
//	@Summary		Create a cognitive profile for a user
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		string			true	"User identifier"
//	@Param			body	body		profile.Profile	true	"Profile document"
//	@Success		201		{object}	profile.Profile
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profiles/{userID} [post]
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	stored, err := h.svc.CreateProfile(r.Context(), userID, &p)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("profile already exists"))
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("create profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.notify("created", userID)
	writeJSON(w, http.StatusCreated, stored)
}

// UpdateProfile handles PUT /api/profiles/{userID}.
//
//	@Summary		Replace a user's cognitive profile
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		string			true	"User identifier"
//	@Param			body	body		profile.Profile	true	"Profile document"
//	@Success		200		{object}	profile.Profile
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profiles/{userID} [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	stored, err := h.svc.UpdateProfile(r.Context(), userID, &p)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("profile not found"))
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.notify("updated", userID)
	writeJSON(w, http.StatusOK, stored)
}

// DeleteProfile handles DELETE /api/profiles/{userID}.
//
//	@Summary		Delete a user's cognitive profile
//	@Tags			profiles
//	@Param			userID	path	string	true	"User identifier"
//	@Success		204		"Profile deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profiles/{userID} [delete]
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.svc.DeleteProfile(r.Context(), userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("profile not found"))
			return
		}
		slog.Error("delete profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.notify("deleted", userID)
	w.WriteHeader(http.StatusNoContent)
}

// DeriveProfile handles POST /api/profiles/{userID}/derive.
//
//	@Summary		Derive and store a profile from onboarding answers
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		string					true	"User identifier"
//	@Param			body	body		DeriveProfileRequest	true	"Onboarding answers"
//	@Success		200		{object}	profile.Profile
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profiles/{userID}/derive [post]
func (h *Handler) DeriveProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req DeriveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	stored, err := h.svc.DeriveProfile(r.Context(), userID, req.Answers)
	if err != nil {
		slog.Error("derive profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.notify("updated", userID)
	writeJSON(w, http.StatusOK, stored)
}

// TransformText handles POST /api/transform/text.
//
//	@Summary		Transform text content according to a cognitive profile
//	@Tags			transform
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TransformTextRequest	true	"Content and profile selector"
//	@Success		200		{object}	TransformTextResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transform/text [post]
func (h *Handler) TransformText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	var req TransformTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	p, ok := h.selectProfile(w, r, req.UserID, req.Profile)
	if !ok {
		return
	}

	result, err := h.svc.TransformText(r.Context(), req.Content, p)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidConfiguration) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		// Fail-safe: degrade to the original content rather than erroring the
		// whole request.
		slog.Error("transform text failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, TransformTextResponse{Result: result, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, TransformTextResponse{Result: result})
}

// TransformPage handles POST /api/transform/page.
//
//	@Summary		Transform a full HTML page (text passes + distraction filter)
//	@Tags			transform
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TransformPageRequest	true	"Page markup and profile selector"
//	@Success		200		{object}	TransformPageResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transform/page [post]
func (h *Handler) TransformPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	var req TransformPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.HTML == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("html is required"))
		return
	}

	p, ok := h.selectProfile(w, r, req.UserID, req.Profile)
	if !ok {
		return
	}

	result, err := h.svc.TransformPage(r.Context(), req.HTML, p)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidConfiguration) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("transform page failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, TransformPageResponse{Result: result, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, TransformPageResponse{Result: result})
}

// ClassifyVisuals handles POST /api/visuals/classify.
//
//	@Summary		Classify visual elements for distraction filtering
//	@Tags			transform
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassifyRequest	true	"Elements and profile selector"
//	@Success		200		{object}	ClassifyResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/visuals/classify [post]
func (h *Handler) ClassifyVisuals(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	p, ok := h.selectProfile(w, r, req.UserID, req.Profile)
	if !ok {
		return
	}

	actions, err := h.svc.ClassifyVisuals(r.Context(), req.Elements, p)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidConfiguration) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("classify visuals failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Actions: actions})
}

// selectProfile resolves the profile for a transformation request: an inline
// profile wins, otherwise the stored profile for userID is fetched, otherwise
// the request is rejected. Writes the error response itself when ok is false.
func (h *Handler) selectProfile(w http.ResponseWriter, r *http.Request, userID string, inline *profile.Profile) (*profile.Profile, bool) {
	if inline != nil {
		return inline, true
	}
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("either profile or userId is required"))
		return nil, false
	}
	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("profile not found"))
		} else {
			slog.Error("get profile failed", slog.String("user_id", userID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return nil, false
	}
	return p, true
}

// isValidationError reports whether err came from schema validation rather
// than storage.
func isValidationError(err error) bool {
	if errors.Is(err, apperr.ErrInvalidConfiguration) {
		return true
	}
	var ve validation.Errors
	return errors.As(err, &ve)
}
