// Package adaptservice coordinates the profile store, the transformation
// engine, the markup collaborator, and the generative model. External-service
// failures degrade to the deterministic local path instead of surfacing.
package adaptservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/attuneweb/attune/internal/apperr"
	"github.com/attuneweb/attune/internal/engine"
	"github.com/attuneweb/attune/internal/markup"
	"github.com/attuneweb/attune/internal/profile"
	"github.com/attuneweb/attune/internal/profilestore"
)

// batchLimit bounds concurrent segment transformations during page
// processing, keeping model traffic under the collaborator's rate limit.
const batchLimit = 4

// ModelClient is the generative-model collaborator. A nil client disables
// the model path entirely; the engine then handles every call.
type ModelClient interface {
	SimplifyText(ctx context.Context, content string, s profile.Settings) (string, error)
	GenerateProfile(ctx context.Context, answers map[string]string) (*profile.Profile, error)
}

// Service exposes the transformation and profile operations.
type Service struct {
	store  profilestore.Store
	engine *engine.Engine
	model  ModelClient
	logger *slog.Logger
}

// New creates a service. model may be nil.
func New(store profilestore.Store, eng *engine.Engine, model ModelClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, engine: eng, model: model, logger: logger}
}

// GetProfile returns the stored profile for userID.
func (s *Service) GetProfile(_ context.Context, userID string) (*profile.Profile, error) {
	return s.store.Get(userID)
}

// CreateProfile validates and stores a new profile.
func (s *Service) CreateProfile(_ context.Context, userID string, p *profile.Profile) (*profile.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.Create(userID, p)
}

// UpdateProfile validates and replaces an existing profile.
func (s *Service) UpdateProfile(_ context.Context, userID string, p *profile.Profile) (*profile.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.Update(userID, p)
}

// DeleteProfile removes a stored profile.
func (s *Service) DeleteProfile(_ context.Context, userID string) error {
	return s.store.Delete(userID)
}

// ListProfiles returns paginated profile records.
func (s *Service) ListProfiles(_ context.Context, limit, offset int) ([]profilestore.Record, int, error) {
	return s.store.List(limit, offset)
}

// DeriveProfile synthesizes a profile from onboarding answers and stores it
// for userID, creating or replacing as needed. The generative model is tried
// first; on any model failure the keyword heuristics produce the profile, so
// a schema-valid profile is always returned.
func (s *Service) DeriveProfile(ctx context.Context, userID string, answers map[string]string) (*profile.Profile, error) {
	p := s.deriveProfile(ctx, answers)

	stored, err := s.store.Update(userID, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return s.store.Create(userID, p)
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Service) deriveProfile(ctx context.Context, answers map[string]string) *profile.Profile {
	if s.model != nil {
		p, err := s.model.GenerateProfile(ctx, answers)
		if err == nil {
			return p
		}
		s.logger.Warn("model profile generation failed, using heuristics",
			slog.String("error", err.Error()))
	}
	return profile.Derive(answers)
}

// TransformText transforms content according to p. When a model client is
// configured its rewrite is preferred; any model failure falls back to the
// local engine. On error the returned result always carries the original
// content unchanged.
func (s *Service) TransformText(ctx context.Context, content string, p *profile.Profile) (engine.TextResult, error) {
	settings, err := profile.Resolve(p)
	if err != nil {
		return engine.TextResult{Content: content, Log: []string{}}, err
	}

	if s.model != nil {
		out, mErr := s.model.SimplifyText(ctx, content, settings)
		if mErr == nil {
			return engine.TextResult{
				Content:  out,
				Log:      []string{"rewritten by generative model"},
				Metadata: engine.ResultMetadata{Level: settings.Level},
			}, nil
		}
		s.logger.Warn("model rewrite failed, using local engine", slog.String("error", mErr.Error()))
	}

	return s.engine.TransformText(content, settings)
}

// ClassifyVisuals maps the supplied elements to visibility actions under p.
func (s *Service) ClassifyVisuals(_ context.Context, elements []engine.VisualElement, p *profile.Profile) ([]engine.VisualAction, error) {
	settings, err := profile.Resolve(p)
	if err != nil {
		return nil, err
	}
	return engine.Classify(elements, settings), nil
}

// PageResult is the outcome of a whole-page transformation.
type PageResult struct {
	HTML                  string                `json:"transformedHTML"`
	Log                   []string              `json:"transformationLog"`
	VisualActions         []engine.VisualAction `json:"visualActions"`
	ParagraphsTransformed int                   `json:"paragraphsTransformed"`
	ElementsClassified    int                   `json:"elementsClassified"`
}

// TransformPage applies the text passes to every paragraph unit of an HTML
// page and the distraction filter to every visual element, then re-serializes
// the page. Paragraphs are processed with bounded concurrency. On failure the
// original markup is returned unchanged.
func (s *Service) TransformPage(ctx context.Context, src string, p *profile.Profile) (PageResult, error) {
	settings, err := profile.Resolve(p)
	if err != nil {
		return PageResult{HTML: src, Log: []string{}}, err
	}

	page, err := markup.Parse(src)
	if err != nil {
		return PageResult{HTML: src, Log: []string{}}, err
	}

	units := page.TextUnits()
	results := make([]engine.TextResult, len(units))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit)
	for i, unit := range units {
		g.Go(func() error {
			res, tErr := s.transformUnit(gCtx, unit, settings)
			if tErr != nil {
				return tErr
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PageResult{HTML: src, Log: []string{}}, err
	}

	res := PageResult{Log: []string{}}
	for i, r := range results {
		if r.Content != units[i] {
			page.SetTextUnit(i, r.Content)
			res.ParagraphsTransformed++
		}
		res.Log = append(res.Log, r.Log...)
	}

	elements := page.Elements()
	res.VisualActions = engine.Classify(elements, settings)
	res.ElementsClassified = len(elements)
	page.Apply(res.VisualActions)

	rendered, err := page.Render()
	if err != nil {
		return PageResult{HTML: src, Log: []string{}}, err
	}
	res.HTML = rendered
	return res, nil
}

// transformUnit transforms a single paragraph unit, preferring the model
// when configured and falling back to the engine on model failure.
func (s *Service) transformUnit(ctx context.Context, unit string, settings profile.Settings) (engine.TextResult, error) {
	if s.model != nil {
		out, mErr := s.model.SimplifyText(ctx, unit, settings)
		if mErr == nil {
			return engine.TextResult{Content: out, Log: []string{}}, nil
		}
		s.logger.Warn("model rewrite failed for page segment, using local engine",
			slog.String("error", mErr.Error()))
	}
	res, err := s.engine.TransformText(unit, settings)
	if err != nil {
		return engine.TextResult{}, fmt.Errorf("adaptservice: transform segment: %w", err)
	}
	return res, nil
}
