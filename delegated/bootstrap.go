package delegated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"go.uber.org/zap"
)

const (
	// MountID identifies the element the widget is mounted on.
	MountID = "pagefind-search"

	// AssetPath is the widget asset, relative to the base path.
	AssetPath = "pagefind/pagefind-ui.json"

	// BundleDir is the widget's bundle directory, relative to the base path.
	BundleDir = "pagefind/"

	// DefaultConstructor is used when the asset does not name one.
	DefaultConstructor = "PagefindUI"

	UnavailableText = "Search is currently unavailable."

	defaultTimeout = 10 * time.Second
)

// Asset is the widget declaration served at AssetPath.
type Asset struct {
	Constructor string `json:"constructor"`
	Version     string `json:"version"`
}

// Mount is the element a widget is attached to.
type Mount struct {
	ID       string
	BasePath string // absolute base URL with trailing slash
}

// assetLoadedMsg carries the outcome of the asset fetch.
type assetLoadedMsg struct {
	asset Asset
	err   error
}

// Bootstrapper loads the widget asset, constructs the widget on the
// mount and forwards events to it. On failure the mount shows a single
// unavailable message.
type Bootstrapper struct {
	ctx     context.Context
	mount   Mount
	seed    string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger

	widget  Widget
	content *render.Container
	err     error
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

func WithHTTPClient(c *http.Client) Option {
	return func(b *Bootstrapper) {
		if c != nil {
			b.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(b *Bootstrapper) { b.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Bootstrapper) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBootstrapper returns a bootstrapper for mount. If pageURL carries a
// q parameter its value seeds the widget's input once mounted.
func NewBootstrapper(ctx context.Context, mount Mount, pageURL string, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		ctx:     ctx,
		mount:   mount,
		seed:    SeedQuery(pageURL),
		client:  http.DefaultClient,
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
		content: &render.Container{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SeedQuery extracts the q parameter of a page URL.
func SeedQuery(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("q")
}

// Init starts loading the widget asset. Without a mount it does nothing.
func (b *Bootstrapper) Init() tea.Cmd {
	if b.mount.ID == "" {
		return nil
	}

	ctx, assetURL := b.ctx, b.mount.BasePath+AssetPath
	return func() tea.Msg {
		asset, err := b.fetchAsset(ctx, assetURL)
		return assetLoadedMsg{asset: asset, err: err}
	}
}

func (b *Bootstrapper) fetchAsset(ctx context.Context, assetURL string) (Asset, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return Asset{}, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Asset{}, fmt.Errorf("fetch %s: HTTP %d", assetURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, err
	}

	var asset Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return Asset{}, fmt.Errorf("malformed asset %s: %w", assetURL, err)
	}
	if asset.Constructor == "" {
		asset.Constructor = DefaultConstructor
	}
	return asset, nil
}

func (b *Bootstrapper) Update(msg tea.Msg) (*Bootstrapper, tea.Cmd) {
	if msg, ok := msg.(assetLoadedMsg); ok {
		return b, b.mountWidget(msg)
	}

	if b.widget == nil {
		return b, nil
	}

	var cmd tea.Cmd
	b.widget, cmd = b.widget.Update(msg)
	return b, cmd
}

func (b *Bootstrapper) mountWidget(msg assetLoadedMsg) tea.Cmd {
	if b.widget != nil || b.err != nil {
		return nil
	}
	if msg.err != nil {
		b.fail(msg.err)
		return nil
	}

	ctor, ok := Lookup(msg.asset.Constructor)
	if !ok {
		b.fail(fmt.Errorf("no widget constructor %q registered", msg.asset.Constructor))
		return nil
	}

	widget, err := b.construct(ctor)
	if err != nil {
		b.fail(err)
		return nil
	}

	b.widget = widget
	b.logger.Info("search widget mounted",
		zap.String("constructor", msg.asset.Constructor),
		zap.String("version", msg.asset.Version))

	cmds := []tea.Cmd{widget.Init()}
	if setter, ok := widget.(InputSetter); ok && b.seed != "" {
		setter.SetInputValue(b.seed)
		cmds = append(cmds, func() tea.Msg { return InputEvent{} })
	}
	return tea.Batch(cmds...)
}

// construct runs ctor, turning a panic into an error.
func (b *Bootstrapper) construct(ctor Constructor) (w Widget, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("widget constructor panicked: %v", r)
		}
	}()

	w, err = ctor(b.ctx, Config{
		Element:        "#" + b.mount.ID,
		ShowSubResults: true,
		BundlePath:     b.mount.BasePath + BundleDir,
		Client:         b.client,
		Logger:         b.logger,
	})
	if err == nil && w == nil {
		err = errors.New("widget constructor returned no widget")
	}
	return w, err
}

func (b *Bootstrapper) fail(cause error) {
	b.err = fmt.Errorf("%w: %v", search.ErrWidgetUnavailable, cause)
	b.content.Clear()
	b.content.Message(render.ClassError, UnavailableText)
	b.logger.Error("failed to load search widget", zap.Error(b.err))
}

func (b *Bootstrapper) View() string {
	if b.widget != nil {
		return b.widget.View()
	}
	return b.content.View(0, 0)
}

// Err is the reason the widget is unavailable, or nil.
func (b *Bootstrapper) Err() error { return b.err }

// Widget is the mounted widget, or nil.
func (b *Bootstrapper) Widget() Widget { return b.widget }

// Content is the mount's own content while no widget is mounted.
func (b *Bootstrapper) Content() *render.Container { return b.content }

// Selected is the widget's selected result, if it exposes one.
func (b *Bootstrapper) Selected() (render.Block, bool) {
	if s, ok := b.widget.(interface{ Selected() (render.Block, bool) }); ok {
		return s.Selected()
	}
	return render.Block{}, false
}
