package api

import (
	"github.com/attuneweb/attune/internal/adaptservice"
	"github.com/attuneweb/attune/internal/engine"
	"github.com/attuneweb/attune/internal/profile"
	"github.com/attuneweb/attune/internal/profilestore"
)

// DeriveProfileRequest carries the onboarding answers for profile derivation.
type DeriveProfileRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// ProfileListResponse wraps paginated profile listings.
type ProfileListResponse struct {
	Profiles []profilestore.Record `json:"profiles" validate:"required"`
	Total    int                   `json:"total" example:"42" validate:"required"`
}

// TransformTextRequest is the request body for text transformation. Exactly
// one of UserID (a stored profile) or Profile (inline) selects the profile.
type TransformTextRequest struct {
	Content string           `json:"content" validate:"required"`
	UserID  string           `json:"userId,omitempty" example:"user-123"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// TransformTextResponse is the tagged result of a text transformation. On
// internal failure Error is set and Result carries the original content
// unchanged.
type TransformTextResponse struct {
	Result engine.TextResult `json:"result"`
	Error  string            `json:"error,omitempty"`
}

// TransformPageRequest is the request body for whole-page transformation.
type TransformPageRequest struct {
	HTML    string           `json:"html" validate:"required"`
	UserID  string           `json:"userId,omitempty"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// TransformPageResponse is the tagged result of a page transformation.
type TransformPageResponse struct {
	Result adaptservice.PageResult `json:"result"`
	Error  string                  `json:"error,omitempty"`
}

// ClassifyRequest is the request body for visual classification.
type ClassifyRequest struct {
	Elements []engine.VisualElement `json:"elements" validate:"required"`
	UserID   string                 `json:"userId,omitempty"`
	Profile  *profile.Profile       `json:"profile,omitempty"`
}

// ClassifyResponse wraps the per-element visibility actions.
type ClassifyResponse struct {
	Actions []engine.VisualAction `json:"actions" validate:"required"`
}
