package engine

import (
	"fmt"

	"github.com/attuneweb/attune/internal/profile"
)

// VisualElement is one page element under classification. SemanticContext is
// an input tag produced by upstream extraction heuristics, not derived here.
type VisualElement struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	SemanticContext string `json:"semanticContext"`
	Position        string `json:"position,omitempty"`
	Size            *Size  `json:"size,omitempty"`
}

// Size is an optional element dimension hint.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VisualAction is the classification output for one element.
type VisualAction struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}

// Classification actions.
const (
	ActionKeepVisible = "keep_visible"
	ActionHide        = "hide"
	ActionFade20      = "fade_to_20_percent_opacity"
	ActionFade30      = "fade_to_30_percent_opacity"
	ActionFade40      = "fade_to_40_percent_opacity"
	ActionFade50      = "fade_to_50_percent_opacity"
)

// Element positions.
const (
	PositionHeader  = "header"
	PositionSidebar = "sidebar"
	PositionFooter  = "footer"
	PositionMain    = "main"
	PositionInline  = "inline"
)

// Well-known semantic contexts.
const (
	ContextSidebarAd     = "sidebar_advertisement"
	ContextPopupAd       = "popup_advertisement"
	ContextNewsletter    = "newsletter_signup"
	ContextStockPhoto    = "decorative_stock_photo"
	ContextArticleFigure = "main_article_figure"
	ContextEducational   = "educational_content"
	ContextUnclassified  = "unclassified_media"
)

// policyRule is one row of the classification decision table. Empty slices
// and fields are wildcards; the first matching rule wins.
type policyRule struct {
	contexts      []string
	sensitivities []string
	position      string
	action        string
	reason        string
}

// policyTable encodes the (semanticContext, sensitivity, position) → action
// mapping. The protected-content rows come first: they are a hard override
// that no sensitivity tier can downgrade, so essential content is never
// hidden regardless of distraction settings. Adding a context or tier is a
// table edit, not a control-flow change.
var policyTable = []policyRule{
	{
		contexts: []string{ContextArticleFigure, ContextEducational},
		action:   ActionKeepVisible,
		reason:   "%s is essential content and is always kept visible",
	},
	{
		contexts:      []string{ContextSidebarAd, ContextPopupAd, ContextNewsletter},
		sensitivities: []string{profile.SensitivityHigh},
		action:        ActionHide,
		reason:        "%s hidden at high sensitivity",
	},
	{
		contexts: []string{ContextSidebarAd, ContextPopupAd, ContextNewsletter},
		action:   ActionFade30,
		reason:   "%s faded at %s sensitivity",
	},
	{
		contexts:      []string{ContextStockPhoto},
		sensitivities: []string{profile.SensitivityHigh},
		action:        ActionFade20,
		reason:        "decorative image faded heavily at high sensitivity",
	},
	{
		contexts:      []string{ContextStockPhoto},
		sensitivities: []string{profile.SensitivityMedium},
		action:        ActionFade50,
		reason:        "decorative image faded at medium sensitivity",
	},
	{
		contexts: []string{ContextStockPhoto},
		action:   ActionKeepVisible,
		reason:   "decorative image kept at low sensitivity",
	},
	{
		sensitivities: []string{profile.SensitivityHigh},
		position:      PositionSidebar,
		action:        ActionFade40,
		reason:        "sidebar element %s faded at high sensitivity",
	},
	{
		action: ActionKeepVisible,
		reason: "%s not recognized as a distraction",
	},
}

// Classify maps each element to an action according to the sensitivity
// policy. When the distraction filter is disabled every element is kept
// visible and no per-element policy evaluation is performed.
func Classify(elements []VisualElement, s profile.Settings) []VisualAction {
	actions := make([]VisualAction, len(elements))
	if !s.FilterEnabled {
		for i, el := range elements {
			actions[i] = VisualAction{
				ID:        el.ID,
				Action:    ActionKeepVisible,
				Reasoning: "distraction filter is disabled",
			}
		}
		return actions
	}

	for i, el := range elements {
		actions[i] = classifyOne(el, s.Sensitivity)
	}
	return actions
}

func classifyOne(el VisualElement, sensitivity string) VisualAction {
	for _, rule := range policyTable {
		if !rule.matches(el, sensitivity) {
			continue
		}
		return VisualAction{
			ID:        el.ID,
			Action:    rule.action,
			Reasoning: rule.describe(el, sensitivity),
		}
	}
	// The table ends in a wildcard row; reaching here is a programming error.
	return VisualAction{ID: el.ID, Action: ActionKeepVisible, Reasoning: "no rule matched"}
}

func (r policyRule) matches(el VisualElement, sensitivity string) bool {
	if len(r.contexts) > 0 && !contains(r.contexts, el.SemanticContext) {
		return false
	}
	if len(r.sensitivities) > 0 && !contains(r.sensitivities, sensitivity) {
		return false
	}
	if r.position != "" && r.position != el.Position {
		return false
	}
	return true
}

// describe renders the rule's reasoning template. Templates take at most the
// element's semantic context and the sensitivity, in that order.
func (r policyRule) describe(el VisualElement, sensitivity string) string {
	ctx := el.SemanticContext
	if ctx == "" {
		ctx = el.Type
	}
	if ctx == "" {
		ctx = "element"
	}
	switch countArgs(r.reason) {
	case 0:
		return r.reason
	case 1:
		return fmt.Sprintf(r.reason, ctx)
	default:
		return fmt.Sprintf(r.reason, ctx, sensitivity)
	}
}

func countArgs(template string) int {
	n := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' && template[i+1] == 's' {
			n++
		}
	}
	return n
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
