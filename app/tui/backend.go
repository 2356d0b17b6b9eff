package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/noelzubin/site_search/delegated"
	"github.com/noelzubin/site_search/embedded"
	"github.com/noelzubin/site_search/render"
)

// Backend is a search mode mounted in the app: it loads its own data,
// handles events and draws the input plus results.
type Backend interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Backend, tea.Cmd)
	View() string
	Selected() (render.Block, bool)
}

// embeddedBackend searches an index held in memory.
type embeddedBackend struct {
	*embedded.Model
}

func (b embeddedBackend) Update(msg tea.Msg) (Backend, tea.Cmd) {
	m, cmd := b.Model.Update(msg)
	return embeddedBackend{m}, cmd
}

// delegatedBackend hands search to a mounted widget.
type delegatedBackend struct {
	*delegated.Bootstrapper
}

func (b delegatedBackend) Update(msg tea.Msg) (Backend, tea.Cmd) {
	boot, cmd := b.Bootstrapper.Update(msg)
	return delegatedBackend{boot}, cmd
}
