// Package pagefind is the built-in "PagefindUI" widget. It loads the
// bundle's fragments into an in-memory bleve index and renders its own
// input and results.
//
// Import it for its side effect of registering the constructor:
//
//	import _ "github.com/noelzubin/site_search/delegated/pagefind"
package pagefind

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/site_search/delegated"
	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"github.com/noelzubin/site_search/search/bleve_indexer"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	EntryFile = "pagefind-entry.json"

	// MaxResults caps the pages shown per query.
	MaxResults = 20

	fetchConcurrency = 4
)

func init() {
	delegated.Register(delegated.DefaultConstructor, New)
}

// Entry is the bundle manifest.
type Entry struct {
	Version   string   `json:"version"`
	Fragments []string `json:"fragments"`
}

// Fragment is one page of the bundle.
type Fragment struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Meta    struct {
		Title string `json:"title"`
	} `json:"meta"`
	Anchors []FragmentAnchor `json:"anchors"`
}

// FragmentAnchor is a linkable heading inside a fragment.
type FragmentAnchor struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type pageIndex interface {
	IndexPages(pages []bleve_indexer.Page) error
	Search(ctx context.Context, qry string, size int) ([]bleve_indexer.Hit, error)
	Len() int
	Close() error
}

// bundleLoadedMsg carries the outcome of loading the bundle.
type bundleLoadedMsg struct {
	index pageIndex
	err   error
}

// Widget is the PagefindUI search widget.
type Widget struct {
	ctx    context.Context
	cfg    delegated.Config
	client *http.Client
	logger *zap.Logger

	textInput textinput.Model
	results   *render.Container

	index   pageIndex
	failed  bool
	pending bool // a query arrived before the index was ready
}

// New constructs the widget. It satisfies delegated.Constructor.
func New(ctx context.Context, cfg delegated.Config) (delegated.Widget, error) {
	if cfg.BundlePath == "" {
		return nil, fmt.Errorf("pagefind: bundle path is required")
	}
	if !strings.HasSuffix(cfg.BundlePath, "/") {
		cfg.BundlePath += "/"
	}

	w := &Widget{
		ctx:       ctx,
		cfg:       cfg,
		client:    cfg.Client,
		logger:    cfg.Logger,
		textInput: textinput.New(),
		results:   &render.Container{},
	}
	if w.client == nil {
		w.client = http.DefaultClient
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	w.textInput.Placeholder = "Search"
	w.textInput.Prompt = "Search:"
	w.textInput.PromptStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("99")).
		Foreground(lipgloss.Color("230")).
		MarginRight(1).
		MarginLeft(2).
		Padding(0, 1)
	w.textInput.Focus()
	return w, nil
}

func (w *Widget) Init() tea.Cmd {
	ctx := w.ctx
	return func() tea.Msg {
		index, err := w.loadBundle(ctx)
		return bundleLoadedMsg{index: index, err: err}
	}
}

// loadBundle fetches the manifest and every fragment, then indexes them.
func (w *Widget) loadBundle(ctx context.Context) (pageIndex, error) {
	var entry Entry
	if err := w.fetchJSON(ctx, w.cfg.BundlePath+EntryFile, &entry); err != nil {
		return nil, err
	}

	fragments := make([]Fragment, len(entry.Fragments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, path := range entry.Fragments {
		g.Go(func() error {
			return w.fetchJSON(gctx, w.cfg.BundlePath+strings.TrimPrefix(path, "/"), &fragments[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index, err := bleve_indexer.NewBleveIndexer()
	if err != nil {
		return nil, err
	}
	pages := lo.Map(fragments, func(f Fragment, _ int) bleve_indexer.Page {
		return bleve_indexer.Page{
			URL:     f.URL,
			Title:   f.Meta.Title,
			Content: f.Content,
			Anchors: lo.Map(f.Anchors, func(a FragmentAnchor, _ int) bleve_indexer.Anchor {
				return bleve_indexer.Anchor{ID: a.ID, Text: a.Text}
			}),
		}
	})
	if err := index.IndexPages(pages); err != nil {
		_ = index.Close()
		return nil, err
	}

	w.logger.Debug("pagefind bundle loaded",
		zap.String("version", entry.Version),
		zap.Int("pages", len(pages)))
	return index, nil
}

func (w *Widget) fetchJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (w *Widget) Update(msg tea.Msg) (delegated.Widget, tea.Cmd) {
	switch msg := msg.(type) {
	case bundleLoadedMsg:
		if msg.err != nil {
			w.failed = true
			w.results.Clear()
			w.results.Message(render.ClassError, delegated.UnavailableText)
			w.logger.Error("failed to load pagefind bundle", zap.Error(msg.err))
			return w, nil
		}
		w.index = msg.index
		if w.pending {
			w.pending = false
			w.query()
		}
		return w, nil
	case delegated.InputEvent:
		w.query()
		return w, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			w.results.CursorDown()
			return w, nil
		case "shift+tab", "up":
			w.results.CursorUp()
			return w, nil
		}
	}

	oldValue := w.textInput.Value()

	var cmd tea.Cmd
	w.textInput, cmd = w.textInput.Update(msg)

	if w.textInput.Value() != oldValue {
		w.query()
	}
	return w, cmd
}

// query runs the current input value, deferring it while loading.
func (w *Widget) query() {
	if w.failed {
		return
	}

	value := w.textInput.Value()
	if strings.TrimSpace(value) == "" {
		w.pending = false
		w.results.Clear()
		return
	}

	if w.index == nil {
		w.pending = true
		w.results.Clear()
		w.results.Message(render.ClassLoading, "Loading...")
		return
	}

	hits, err := w.index.Search(w.ctx, value, MaxResults)
	if err != nil {
		w.logger.Warn("pagefind query failed", zap.String("query", value), zap.Error(err))
		hits = nil
	}

	w.results.Clear()
	if len(hits) == 0 {
		w.results.Message(render.ClassEmpty, fmt.Sprintf("No results for %s", value))
		return
	}
	for _, hit := range hits {
		w.results.Card(search.Document{URI: hit.Page.URL, Title: hit.Page.Title, Content: hit.Page.Content})
		if !w.cfg.ShowSubResults {
			continue
		}
		for _, a := range subResults(hit) {
			w.results.Sub(a.Text, hit.Page.URL+"#"+a.ID)
		}
	}
}

// subResults are the anchors of a hit whose text contains a matched term.
func subResults(hit bleve_indexer.Hit) []bleve_indexer.Anchor {
	return lo.Filter(hit.Page.Anchors, func(a bleve_indexer.Anchor, _ int) bool {
		text := strings.ToLower(a.Text)
		return a.ID != "" && lo.SomeBy(hit.Terms, func(term string) bool {
			return strings.Contains(text, term)
		})
	})
}

// SetInputValue pre-fills the query input. The host follows it with a
// delegated.InputEvent.
func (w *Widget) SetInputValue(value string) {
	w.textInput.SetValue(value)
}

func (w *Widget) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		w.textInput.View(),
		lipgloss.NewStyle().MarginTop(1).Render(w.results.View(0, 0)),
	)
}

func (w *Widget) Selected() (render.Block, bool) { return w.results.Selected() }

// Value is the current query text.
func (w *Widget) Value() string { return w.textInput.Value() }

// Results exposes the widget's results area.
func (w *Widget) Results() *render.Container { return w.results }

// Ready reports whether the bundle is indexed.
func (w *Widget) Ready() bool { return w.index != nil }
