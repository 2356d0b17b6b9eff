// Package delegated mounts an external search widget that owns its own
// index loading, querying and rendering.
package delegated

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Config is handed to a widget constructor.
type Config struct {
	Element        string // mount selector, e.g. "#pagefind-search"
	ShowSubResults bool
	BundlePath     string // absolute URL of the widget's bundle directory, with trailing slash

	Client *http.Client
	Logger *zap.Logger
}

// Widget is a mounted search component.
type Widget interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Widget, tea.Cmd)
	View() string
}

// InputSetter is implemented by widgets whose query input can be
// pre-filled by the host.
type InputSetter interface {
	SetInputValue(value string)
}

// InputEvent tells a widget its input value changed outside of a
// keystroke, e.g. after SetInputValue.
type InputEvent struct{}

// Constructor builds a widget against a mount.
type Constructor func(ctx context.Context, cfg Config) (Widget, error)

var (
	registryMu   sync.RWMutex
	constructors = make(map[string]Constructor)
)

// Register makes a widget constructor available by name. It panics if
// ctor is nil or the name is already taken.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if ctor == nil {
		panic("delegated: Register constructor is nil")
	}
	if _, dup := constructors[name]; dup {
		panic(fmt.Sprintf("delegated: Register called twice for %q", name))
	}
	constructors[name] = ctor
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ctor, ok := constructors[name]
	return ctor, ok
}

// Constructors lists the registered names in sorted order.
func Constructors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
