package main

import (
	"context"
	"net/url"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/site_search/editor"
	"github.com/noelzubin/site_search/render"
	"go.uber.org/zap"
)

var PreviewStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 1)

// Main app model for bubbletea
type Model struct {
	width   int                // width of terminal
	height  int                // height of terminal
	backend Backend            // the search mode in use
	preview *viewport.Model    // the preview pane, when open
	editor  editor.Editor      // for opening a result externally
	baseURL string             // results are resolved against this
	cancel  context.CancelFunc // stops in-flight fetches on quit
	logger  *zap.Logger
}

// Create a new model for the app
func New(backend Backend, baseURL, opener string, cancel context.CancelFunc, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		backend: backend,
		editor:  editor.Editor{OpenerCmd: opener},
		baseURL: baseURL,
		cancel:  cancel,
		logger:  logger,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.backend.Init()
}

// listWidth is the width left to the backend; the preview takes half.
func (m *Model) listWidth() int {
	if m.preview != nil {
		return m.width / 2
	}
	return m.width
}

// resize tells the backend how much room it has.
func (m *Model) resize() tea.Cmd {
	var cmd tea.Cmd
	m.backend, cmd = m.backend.Update(tea.WindowSizeMsg{Width: m.listWidth(), Height: m.height})
	if m.preview != nil {
		m.preview.Width = m.width - m.listWidth() - PreviewStyle.GetHorizontalFrameSize()
		m.preview.Height = m.height - PreviewStyle.GetVerticalFrameSize()
	}
	return cmd
}

// The update fn for the bubbletea model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.resize()
	case editor.OpenFinished:
		m.editor, cmd = m.editor.Update(msg)
		if msg.Err != nil {
			m.logger.Warn("failed to open result", zap.String("url", msg.URL), zap.Error(msg.Err))
		}
		return m, cmd
	case tea.KeyMsg:
		// Keybindings:
		// Enter - toggle preview for the selected result
		// Esc - close preview
		// Ctrl+K - Preview line up
		// Ctrl+J - Preview line down
		// Ctrl+O - Open the selected result
		// Ctrl+C - quit the application
		// Everything else goes to the backend.
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.preview != nil {
				m.preview = nil
				return m, m.resize()
			}
			if block, ok := m.backend.Selected(); ok {
				m.openPreview(block)
				return m, m.resize()
			}
			return m, nil
		case "esc":
			if m.preview != nil {
				m.preview = nil
				return m, m.resize()
			}
			return m, nil
		case "ctrl+k":
			if m.preview != nil {
				m.preview.LineUp(5)
			}
			return m, nil
		case "ctrl+j":
			if m.preview != nil {
				m.preview.LineDown(5)
			}
			return m, nil
		case "ctrl+o":
			if block, ok := m.backend.Selected(); ok && !m.editor.Opening {
				return m, m.editor.Open(ResolveURL(m.baseURL, block.URI))
			}
			return m, nil
		}
	}

	m.backend, cmd = m.backend.Update(msg)
	cmds = append(cmds, cmd)

	if m.preview != nil {
		var preview viewport.Model
		preview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
		m.preview = &preview
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) openPreview(block render.Block) {
	vp := viewport.New(0, 0)
	body := block.Content
	if body == "" {
		body = block.Snippet
	}
	vp.SetContent(lipgloss.JoinVertical(lipgloss.Left,
		render.TitleStyle.Render(block.Title),
		render.URIStyle.Render(block.URI),
		"",
		lipgloss.NewStyle().Width(max(m.width/2-PreviewStyle.GetHorizontalFrameSize(), 20)).Render(body),
	))
	m.preview = &vp
}

// View fn for bubbletea model
func (m *Model) View() string {
	content := m.backend.View()

	// if preview then preview takes up half the width
	if m.preview != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.listWidth()).Render(content),
			PreviewStyle.Render(m.preview.View()),
		)
	}
	return content
}

// PreviewOpen reports whether the preview pane is shown.
func (m *Model) PreviewOpen() bool { return m.preview != nil }

// ResolveURL makes a result URI absolute against the site base. URIs
// that do not parse are returned unchanged.
func ResolveURL(baseURL, uri string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
