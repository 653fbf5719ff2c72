package adaptservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/attuneweb/attune/internal/apperr"
	"github.com/attuneweb/attune/internal/engine"
	"github.com/attuneweb/attune/internal/profile"
	"github.com/attuneweb/attune/internal/profilestore"
)

// fakeModel is a scriptable ModelClient.
type fakeModel struct {
	simplify func(content string, s profile.Settings) (string, error)
	generate func(answers map[string]string) (*profile.Profile, error)
	calls    int
}

func (f *fakeModel) SimplifyText(_ context.Context, content string, s profile.Settings) (string, error) {
	f.calls++
	if f.simplify == nil {
		return "", errors.New("not scripted")
	}
	return f.simplify(content, s)
}

func (f *fakeModel) GenerateProfile(_ context.Context, answers map[string]string) (*profile.Profile, error) {
	f.calls++
	if f.generate == nil {
		return nil, errors.New("not scripted")
	}
	return f.generate(answers)
}

func testService(t *testing.T, model ModelClient) *Service {
	t.Helper()
	db, err := profilestore.Open(filepath.Join(t.TempDir(), "svc-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(db, engine.New(), model, logger)
}

func TestProfileCRUD(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateProfile(ctx, "alice", profile.Default())
	if err != nil {
		t.Fatal(err)
	}
	if created.Metadata.Version != 1 {
		t.Errorf("version = %d", created.Metadata.Version)
	}

	p := profile.Default()
	p.Simplification.UseAnalogies = true
	updated, err := svc.UpdateProfile(ctx, "alice", p)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Metadata.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Metadata.Version)
	}

	records, total, err := svc.ListProfiles(ctx, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(records) != 1 || records[0].UserID != "alice" {
		t.Errorf("records = %v, total = %d", records, total)
	}

	if err := svc.DeleteProfile(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProfile(ctx, "alice"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateProfile_Invalid(t *testing.T) {
	svc := testService(t, nil)
	p := profile.Default()
	p.Text.Vocabulary.SimplificationLevel = "expert"
	if _, err := svc.CreateProfile(context.Background(), "bob", p); err == nil {
		t.Fatal("invalid profile should be rejected before storage")
	}
}

func TestDeriveProfile_CreatesWhenMissing(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	p, err := svc.DeriveProfile(ctx, "carol", map[string]string{
		"complex_topics": "simple words please",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Text.Vocabulary.SimplificationLevel != profile.LevelBasic {
		t.Errorf("level = %q", p.Text.Vocabulary.SimplificationLevel)
	}
	if p.Metadata.GeneratedBy != profile.GeneratedByHeuristic {
		t.Errorf("generatedBy = %q, want heuristic without a model", p.Metadata.GeneratedBy)
	}

	stored, err := svc.GetProfile(ctx, "carol")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Metadata.Version != 1 {
		t.Errorf("version = %d", stored.Metadata.Version)
	}
}

func TestDeriveProfile_UpdatesExisting(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	if _, err := svc.CreateProfile(ctx, "dave", profile.Default()); err != nil {
		t.Fatal(err)
	}
	p, err := svc.DeriveProfile(ctx, "dave", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Metadata.Version != 2 {
		t.Errorf("version = %d, want bump on re-derive", p.Metadata.Version)
	}
}

func TestDeriveProfile_ModelPreferred(t *testing.T) {
	want := profile.Default()
	want.Text.Chunking.MaxLength = 2
	want.Metadata.GeneratedBy = profile.GeneratedByModel

	model := &fakeModel{generate: func(map[string]string) (*profile.Profile, error) {
		return want, nil
	}}
	svc := testService(t, model)

	p, err := svc.DeriveProfile(context.Background(), "erin", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Text.Chunking.MaxLength != 2 {
		t.Errorf("maxLength = %d, want model output", p.Text.Chunking.MaxLength)
	}
	if p.Metadata.GeneratedBy != profile.GeneratedByModel {
		t.Errorf("generatedBy = %q", p.Metadata.GeneratedBy)
	}
}

func TestDeriveProfile_ModelFailureFallsBack(t *testing.T) {
	model := &fakeModel{generate: func(map[string]string) (*profile.Profile, error) {
		return nil, apperr.ErrExternalService
	}}
	svc := testService(t, model)

	p, err := svc.DeriveProfile(context.Background(), "frank", map[string]string{
		"distraction": "I get very distracted",
	})
	if err != nil {
		t.Fatal(err)
	}
	// Provenance records which path actually produced the profile.
	if p.Metadata.GeneratedBy != profile.GeneratedByHeuristic {
		t.Errorf("generatedBy = %q, want heuristic after model failure", p.Metadata.GeneratedBy)
	}
	if p.Visuals.DistractionFilter.Sensitivity != profile.SensitivityHigh {
		t.Errorf("sensitivity = %q", p.Visuals.DistractionFilter.Sensitivity)
	}
}

func TestTransformText_EngineOnly(t *testing.T) {
	svc := testService(t, nil)

	res, err := svc.TransformText(context.Background(), "The paradigm is ubiquitous.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "model") || !strings.Contains(res.Content, "widespread") {
		t.Errorf("content = %q", res.Content)
	}
}

func TestTransformText_ModelPreferred(t *testing.T) {
	model := &fakeModel{simplify: func(content string, s profile.Settings) (string, error) {
		return "Model rewrite.", nil
	}}
	svc := testService(t, model)

	res, err := svc.TransformText(context.Background(), "Anything.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Model rewrite." {
		t.Errorf("content = %q", res.Content)
	}
	if len(res.Log) != 1 || res.Log[0] != "rewritten by generative model" {
		t.Errorf("log = %v", res.Log)
	}
}

func TestTransformText_ModelFailureFallsBack(t *testing.T) {
	model := &fakeModel{simplify: func(string, profile.Settings) (string, error) {
		return "", apperr.ErrExternalService
	}}
	svc := testService(t, model)

	res, err := svc.TransformText(context.Background(), "The paradigm shifts.", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "model shifts") {
		t.Errorf("content = %q, want deterministic fallback output", res.Content)
	}
	if model.calls == 0 {
		t.Error("model was never tried")
	}
}

func TestTransformText_InvalidProfileKeepsOriginal(t *testing.T) {
	svc := testService(t, nil)
	p := profile.Default()
	p.Text.Chunking.MaxLength = -1

	in := "Original content."
	res, err := svc.TransformText(context.Background(), in, p)
	if !errors.Is(err, apperr.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if res.Content != in {
		t.Errorf("content = %q, want original on error", res.Content)
	}
}

func TestClassifyVisuals(t *testing.T) {
	svc := testService(t, nil)

	p := profile.Default()
	p.Visuals.DistractionFilter = profile.DistractionFilter{Enabled: true, Sensitivity: profile.SensitivityHigh}

	actions, err := svc.ClassifyVisuals(context.Background(), []engine.VisualElement{
		{ID: "ad-1", SemanticContext: engine.ContextPopupAd},
	}, p)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Action != engine.ActionHide {
		t.Errorf("actions = %v", actions)
	}
}

func TestTransformPage(t *testing.T) {
	svc := testService(t, nil)

	p := profile.Default()
	p.Text.Vocabulary.SimplificationLevel = profile.LevelIntermediate
	p.Visuals.DistractionFilter = profile.DistractionFilter{Enabled: true, Sensitivity: profile.SensitivityHigh}

	src := `<main><p>The paradigm is ubiquitous.</p><p>Plain text here.</p></main><div id="ad-1" class="advert">Buy</div>`
	res, err := svc.TransformPage(context.Background(), src, p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.HTML, "widespread") {
		t.Errorf("html = %q, vocabulary pass missing", res.HTML)
	}
	if res.ParagraphsTransformed != 1 {
		t.Errorf("paragraphsTransformed = %d, want 1", res.ParagraphsTransformed)
	}
	if res.ElementsClassified != 1 {
		t.Errorf("elementsClassified = %d, want 1", res.ElementsClassified)
	}
	if !strings.Contains(res.HTML, "display:none") {
		t.Errorf("html = %q, ad not hidden", res.HTML)
	}
	if len(res.VisualActions) != 1 || res.VisualActions[0].Action != engine.ActionHide {
		t.Errorf("visualActions = %v", res.VisualActions)
	}
}

func TestTransformPage_InvalidProfileKeepsOriginal(t *testing.T) {
	svc := testService(t, nil)
	p := profile.Default()
	p.Visuals.DistractionFilter = profile.DistractionFilter{Enabled: true, Sensitivity: "ultra"}

	src := `<p>Content.</p>`
	res, err := svc.TransformPage(context.Background(), src, p)
	if !errors.Is(err, apperr.ErrInvalidConfiguration) {
		t.Fatalf("err = %v", err)
	}
	if res.HTML != src {
		t.Errorf("html = %q, want original markup on error", res.HTML)
	}
}
