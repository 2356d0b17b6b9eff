package embedded

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"go.uber.org/zap"
)

var ResultsStyle = lipgloss.NewStyle().MarginTop(1)

// IndexLoader fetches the document index.
type IndexLoader interface {
	Load(ctx context.Context, url string) (search.Index, error)
}

// IndexLoadedMsg carries the outcome of the index fetch.
type IndexLoadedMsg struct {
	Index search.Index
	Err   error
}

// field adapts a textinput to the controller's Input.
type field struct {
	input    *textinput.Model
	disabled bool
}

func (f *field) SetDisabled(disabled bool) {
	f.disabled = disabled
	if disabled {
		f.input.Blur()
	}
}

func (f *field) SetPlaceholder(text string) { f.input.Placeholder = text }

func (f *field) Focus() { f.input.Focus() }

// Model is the bubbletea component for embedded-index search.
type Model struct {
	ctx      context.Context
	loader   IndexLoader
	indexURL string

	textInput textinput.Model
	field     *field
	results   *render.Container
	ctrl      *Controller

	width  int
	height int
}

// New returns a model that loads indexURL when initialised.
func New(ctx context.Context, loader IndexLoader, indexURL string, logger *zap.Logger, opts ...Option) *Model {
	m := &Model{
		ctx:       ctx,
		loader:    loader,
		indexURL:  indexURL,
		textInput: newTextInput(),
		results:   &render.Container{},
	}
	m.field = &field{input: &m.textInput}
	m.ctrl = NewController(m.field, m.results, append([]Option{WithLogger(logger)}, opts...)...)
	return m
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = PlaceholderReady
	ti.Prompt = "Search:"
	ti.PromptStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		MarginRight(1).
		MarginLeft(2).
		Padding(0, 1)
	return ti
}

// Init starts loading the index.
func (m *Model) Init() tea.Cmd {
	if !m.ctrl.Start() {
		return nil
	}

	ctx, loader, url := m.ctx, m.loader, m.indexURL
	return func() tea.Msg {
		index, err := loader.Load(ctx, url)
		return IndexLoadedMsg{Index: index, Err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case IndexLoadedMsg:
		m.ctrl.Loaded(msg.Index, msg.Err)
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.results.CursorDown()
			return m, nil
		case "shift+tab", "up":
			m.results.CursorUp()
			return m, nil
		}
		if m.field.disabled {
			return m, nil
		}
	}

	// save to compare if changed
	oldValue := m.textInput.Value()

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)

	// every change of the query is handled synchronously
	if newValue := m.textInput.Value(); newValue != oldValue {
		m.ctrl.Input(newValue)
	}
	return m, cmd
}

func (m *Model) View() string {
	height := m.height - 2
	if m.height == 0 {
		height = 0
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.textInput.View(),
		ResultsStyle.Render(m.results.View(m.width, height)),
	)
}

// Selected is the result card under the cursor.
func (m *Model) Selected() (render.Block, bool) { return m.results.Selected() }

func (m *Model) State() search.State { return m.ctrl.State() }

// Disabled reports whether the query input accepts keystrokes.
func (m *Model) Disabled() bool { return m.field.disabled }

// Value is the current query text.
func (m *Model) Value() string { return m.textInput.Value() }

// Placeholder is the query input's current placeholder.
func (m *Model) Placeholder() string { return m.textInput.Placeholder }

// Results exposes the results area.
func (m *Model) Results() *render.Container { return m.results }
