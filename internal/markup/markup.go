// Package markup is the HTML collaborator for page transformation: it
// extracts paragraph text units and visual elements (with computed semantic
// context and position hints) from a page, and applies text rewrites and
// visual actions back onto the tree.
package markup

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/attuneweb/attune/internal/engine"
)

// sanitizer is applied to submitted pages before parsing. It keeps the
// structural elements and class/id hooks the classifier needs while stripping
// scripts and event handlers.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowElements("aside", "figure", "figcaption", "section", "article", "main", "header", "footer", "nav", "video", "iframe")
	p.AllowAttrs("src", "title", "width", "height").OnElements("iframe", "video")
	p.AllowAttrs("width", "height").OnElements("img")
	return p
}()

// Page is a parsed HTML page ready for transformation.
type Page struct {
	doc      *html.Node
	paras    []*html.Node
	elements []engine.VisualElement
	nodes    map[string]*html.Node // element ID → node
}

// Parse sanitizes and parses an HTML page, collecting its paragraph units
// and visual elements.
func Parse(src string) (*Page, error) {
	clean := sanitizer.Sanitize(src)
	doc, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("markup: parse: %w", err)
	}

	p := &Page{doc: doc, nodes: make(map[string]*html.Node)}
	p.collect(doc, nil)
	return p, nil
}

// TextUnits returns the text of every paragraph unit in document order.
func (p *Page) TextUnits() []string {
	out := make([]string, len(p.paras))
	for i, n := range p.paras {
		out[i] = collectText(n)
	}
	return out
}

// SetTextUnit replaces the text of paragraph unit i. Text containing blank
// lines is split into consecutive sibling paragraphs, so chunked output maps
// back onto the tree.
func (p *Page) SetTextUnit(i int, text string) {
	if i < 0 || i >= len(p.paras) {
		return
	}
	node := p.paras[i]
	parts := strings.Split(text, "\n\n")

	setText(node, parts[0])
	anchor := node
	for _, part := range parts[1:] {
		next := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		setText(next, part)
		node.Parent.InsertBefore(next, anchor.NextSibling)
		anchor = next
	}
}

// Elements returns the visual elements found on the page, with computed
// semantic context and position.
func (p *Page) Elements() []engine.VisualElement {
	return p.elements
}

// actionStyles maps a classification action to the inline style it applies.
var actionStyles = map[string]string{
	engine.ActionHide:   "display:none",
	engine.ActionFade20: "opacity:0.2",
	engine.ActionFade30: "opacity:0.3",
	engine.ActionFade40: "opacity:0.4",
	engine.ActionFade50: "opacity:0.5",
}

// Apply applies visual actions to their elements. Unknown IDs and
// keep_visible actions are no-ops.
func (p *Page) Apply(actions []engine.VisualAction) {
	for _, a := range actions {
		style, ok := actionStyles[a.Action]
		if !ok {
			continue
		}
		node, ok := p.nodes[a.ID]
		if !ok {
			continue
		}
		appendStyle(node, style)
	}
}

// Render serializes the page back to HTML.
func (p *Page) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, p.doc); err != nil {
		return "", fmt.Errorf("markup: render: %w", err)
	}
	return buf.String(), nil
}

// collect walks the tree gathering paragraph units and visual elements.
// ancestors carries the element chain used for position inference.
func (p *Page) collect(n *html.Node, ancestors []*html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.P:
			if strings.TrimSpace(collectText(n)) != "" {
				p.paras = append(p.paras, n)
			}
		case atom.Img, atom.Video, atom.Iframe, atom.Aside:
			p.addVisual(n, ancestors)
			if n.DataAtom != atom.Aside {
				return
			}
		case atom.Div:
			if isAdMarker(classID(n)) {
				p.addVisual(n, ancestors)
				return
			}
		}
	}

	next := ancestors
	if n.Type == html.ElementNode {
		next = append(ancestors, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collect(c, next)
	}
}

func (p *Page) addVisual(n *html.Node, ancestors []*html.Node) {
	id := attr(n, "id")
	if id == "" {
		id = fmt.Sprintf("el-%d", len(p.elements)+1)
	}

	position := inferPosition(ancestors)
	el := engine.VisualElement{
		ID:              id,
		Type:            elementType(n),
		SemanticContext: inferContext(n, ancestors, position),
		Position:        position,
		Size:            elementSize(n),
	}
	p.elements = append(p.elements, el)
	p.nodes[id] = n
}

// elementType maps a node to the element type vocabulary.
func elementType(n *html.Node) string {
	switch n.DataAtom {
	case atom.Img:
		return "image"
	case atom.Video:
		return "video"
	case atom.Iframe:
		return "iframe"
	case atom.Aside:
		return "aside"
	default:
		return "advertisement"
	}
}

// inferPosition derives the element's page region from its ancestor chain.
func inferPosition(ancestors []*html.Node) string {
	// Walk inside-out so the nearest landmark wins.
	for i := len(ancestors) - 1; i >= 0; i-- {
		switch ancestors[i].DataAtom {
		case atom.Header:
			return engine.PositionHeader
		case atom.Aside:
			return engine.PositionSidebar
		case atom.Footer:
			return engine.PositionFooter
		case atom.Main, atom.Article:
			return engine.PositionMain
		}
		if isSidebarMarker(classID(ancestors[i])) {
			return engine.PositionSidebar
		}
	}
	return engine.PositionInline
}

// inferContext computes the semantic-context tag from structural hints:
// class/id markers, alt text, and landmark ancestry.
func inferContext(n *html.Node, ancestors []*html.Node, position string) string {
	marker := classID(n)

	switch {
	case isAdMarker(marker):
		if strings.Contains(marker, "popup") || strings.Contains(marker, "modal") || strings.Contains(marker, "overlay") {
			return engine.ContextPopupAd
		}
		return engine.ContextSidebarAd
	case containsAny(marker, "newsletter", "signup", "subscribe"):
		return engine.ContextNewsletter
	case containsAny(marker, "stock", "decorative", "hero-image", "background"):
		return engine.ContextStockPhoto
	}

	if n.DataAtom == atom.Img {
		alt := strings.ToLower(attr(n, "alt"))
		if containsAny(alt, "diagram", "chart", "graph", "figure", "illustration") {
			return engine.ContextEducational
		}
		if inFigure(ancestors) && position == engine.PositionMain {
			return engine.ContextArticleFigure
		}
	}

	return engine.ContextUnclassified
}

func inFigure(ancestors []*html.Node) bool {
	for _, a := range ancestors {
		if a.DataAtom == atom.Figure {
			return true
		}
	}
	return false
}

func isAdMarker(marker string) bool {
	return containsAny(marker, "advert", "sponsor", "promo", "ad-slot", "ad_slot", "adbox", "google_ads")
}

func isSidebarMarker(marker string) bool {
	return containsAny(marker, "sidebar", "side-bar", "rail")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// classID returns the lowercased class and id attributes joined for marker
// matching.
func classID(n *html.Node) string {
	return strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func elementSize(n *html.Node) *engine.Size {
	w, werr := strconv.Atoi(attr(n, "width"))
	h, herr := strconv.Atoi(attr(n, "height"))
	if werr != nil || herr != nil {
		return nil
	}
	return &engine.Size{Width: w, Height: h}
}

func appendStyle(n *html.Node, style string) {
	for i, a := range n.Attr {
		if a.Key == "style" {
			existing := strings.TrimRight(strings.TrimSpace(a.Val), ";")
			if existing != "" {
				n.Attr[i].Val = existing + ";" + style
			} else {
				n.Attr[i].Val = style
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}

func setText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// collectText gathers the trimmed, whitespace-normalized text content of a
// subtree.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
