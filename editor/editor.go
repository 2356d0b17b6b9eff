package editor

import (
	"errors"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrNoOpener = errors.New("no opener configured")

// Editor opens a result URL with an external program, e.g. xdg-open
// or a terminal browser.
type Editor struct {
	Opening   bool   // Is the opener running
	OpenerCmd string // Command to open the URL with
}

// OpenFinished is sent when the opener exits.
type OpenFinished struct {
	URL string
	Err error
}

// openWith hands the terminal to app until it exits.
func openWith(url, app string, args ...string) tea.Cmd {
	return tea.ExecProcess(exec.Command(app, args...), func(err error) tea.Msg {
		return OpenFinished{URL: url, Err: err}
	})
}

func (m *Editor) Open(url string) tea.Cmd {
	if m.OpenerCmd == "" {
		return func() tea.Msg { return OpenFinished{URL: url, Err: ErrNoOpener} }
	}
	m.Opening = true
	return openWith(url, m.OpenerCmd, url)
}

func (m Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg.(type) {
	case OpenFinished:
		m.Opening = false
	}
	return m, nil
}

// Doesnt render anything
func (m Editor) View() string {
	return ""
}
