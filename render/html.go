package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noelzubin/site_search/search"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element IDs of the embedded search page.
const (
	InputID   = "fuse-search-input"
	ResultsID = "fuse-search-results"
)

// ErrMissingElement is returned by ParsePage when the page lacks one of
// the search elements.
var ErrMissingElement = errors.New("search element missing")

// HTMLResults is a Surface backed by an HTML element. Untrusted values are
// only ever attached as text nodes or attribute values.
type HTMLResults struct {
	Node *html.Node
}

func (h HTMLResults) Clear() {
	for c := h.Node.FirstChild; c != nil; c = h.Node.FirstChild {
		h.Node.RemoveChild(c)
	}
}

func (h HTMLResults) Message(class, text string) {
	h.Node.AppendChild(element("p", "class", class).withText(text).Node)
}

func (h HTMLResults) Results(results []search.QueryResult) {
	h.Clear()

	if len(results) == 0 {
		h.Message(ClassEmpty, NoResultsText)
		return
	}

	for _, r := range results {
		link := element("a", "href", r.Item.URI).withText(r.Item.Title)
		heading := element("h3", "class", "result-title").append(link)
		snippet := element("p", "class", "result-snippet").withText(Snippet(r.Item.Content))

		h.Node.AppendChild(element("article", "class", "result-item").append(heading).append(snippet).Node)
	}
}

type node struct{ *html.Node }

// element creates a detached element with the given attribute pairs.
func element(tag string, attrs ...string) node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return node{n}
}

// withText sets the element's only child to a text node.
func (n node) withText(text string) node {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func (n node) append(child node) node {
	n.AppendChild(child.Node)
	return n
}

// Page is an HTML document holding the embedded search elements.
type Page struct {
	Root    *html.Node
	Input   *html.Node
	Results *html.Node
}

// ParsePage parses an HTML document and locates the query input and the
// results container by ID.
func ParsePage(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{Root: root, Input: ElementByID(root, InputID), Results: ElementByID(root, ResultsID)}
	if p.Input == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingElement, InputID)
	}
	if p.Results == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingElement, ResultsID)
	}
	return p, nil
}

// NewPage builds a minimal search page for basePath.
func NewPage(basePath string) *Page {
	doc := `<!DOCTYPE html><html><body><main class="search-page">` +
		`<input type="search" id="` + InputID + `" data-base-url="` + html.EscapeString(basePath) + `">` +
		`<div id="` + ResultsID + `"></div></main></body></html>`

	p, err := ParsePage(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}
	return p
}

// BaseURL returns the input's data-base-url, defaulting to "/".
func (p *Page) BaseURL() string {
	if v, ok := attr(p.Input, "data-base-url"); ok && v != "" {
		return v
	}
	return "/"
}

func (p *Page) Surface() HTMLResults { return HTMLResults{Node: p.Results} }

func (p *Page) SetDisabled(disabled bool) {
	if disabled {
		setAttr(p.Input, "disabled", "")
	} else {
		removeAttr(p.Input, "disabled")
	}
}

func (p *Page) SetPlaceholder(text string) { setAttr(p.Input, "placeholder", text) }

func (p *Page) Focus() { setAttr(p.Input, "autofocus", "") }

// Value is the input's current value attribute.
func (p *Page) Value() string {
	v, _ := attr(p.Input, "value")
	return v
}

func (p *Page) SetValue(v string) { setAttr(p.Input, "value", v) }

// Render writes n and its children as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// ElementByID returns the first element under root with the given id.
func ElementByID(root *html.Node, id string) *html.Node {
	if root.Type == html.ElementNode {
		if v, ok := attr(root, "id"); ok && v == id {
			return root
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := ElementByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
