// Package embedded runs search against an index fetched once and held in
// memory.
package embedded

import (
	"unicode/utf8"

	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"github.com/noelzubin/site_search/search/fuzzy"
	"go.uber.org/zap"
)

// MinQueryLength is the shortest query that reaches the engine.
const MinQueryLength = 2

// Texts shown by the controller.
const (
	PlaceholderLoading     = "Loading search..."
	PlaceholderReady       = "Search for articles..."
	PlaceholderUnavailable = "Search unavailable"

	LoadingText      = "Loading search index..."
	StillLoadingText = "Still loading..."
	UnavailableText  = "Search is currently unavailable. Please try again later."
)

// Input is the query field's affordance state.
type Input interface {
	SetDisabled(disabled bool)
	SetPlaceholder(text string)
	Focus()
}

// BuildFunc builds an engine over a loaded index.
type BuildFunc func(search.Index) search.Engine

// Controller owns the search state, the index and the engine, and
// drives the input and results surface from them.
type Controller struct {
	input   Input
	results render.Surface
	build   BuildFunc
	logger  *zap.Logger

	state  search.State
	index  search.Index
	engine search.Engine
}

// Option configures a Controller.
type Option func(*Controller)

// WithBuilder replaces the default fuzzy engine.
func WithBuilder(build BuildFunc) Option {
	return func(c *Controller) {
		if build != nil {
			c.build = build
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController returns a controller in the Uninitialized state.
func NewController(input Input, results render.Surface, opts ...Option) *Controller {
	c := &Controller{
		input:   input,
		results: results,
		logger:  zap.NewNop(),
		build: func(index search.Index) search.Engine {
			return fuzzy.New(index)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() search.State { return c.state }

// Index is the loaded index, nil until Ready.
func (c *Controller) Index() search.Index { return c.index }

// Start moves Uninitialized to Loading. It reports false if the
// controller was already started.
func (c *Controller) Start() bool {
	if c.state != search.Uninitialized {
		return false
	}

	c.state = search.Loading
	c.input.SetDisabled(true)
	c.input.SetPlaceholder(PlaceholderLoading)
	c.results.Clear()
	c.results.Message(render.ClassLoading, LoadingText)
	return true
}

// Loaded applies the outcome of the index fetch. Outcomes arriving in
// any state other than Loading are ignored, so Error stays terminal.
func (c *Controller) Loaded(index search.Index, err error) {
	if c.state != search.Loading {
		c.logger.Debug("ignoring index outcome", zap.Stringer("state", c.state))
		return
	}

	if err != nil {
		c.state = search.Error
		c.results.Clear()
		c.results.Message(render.ClassError, UnavailableText)
		c.input.SetDisabled(true)
		c.input.SetPlaceholder(PlaceholderUnavailable)
		c.logger.Error("failed to load search index", zap.Error(err))
		return
	}

	c.index = index
	c.engine = c.build(index)
	c.state = search.Ready
	c.results.Clear()
	c.input.SetDisabled(false)
	c.input.SetPlaceholder(PlaceholderReady)
	c.input.Focus()
	c.logger.Info("search ready", zap.Int("documents", len(index)))
}

// Input handles a change of the query text. A short query clears the
// results in every state. In Error a longer query leaves the unavailable
// message in place.
func (c *Controller) Input(query string) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		c.results.Clear()
		return
	}

	if c.state == search.Error {
		return
	}

	if c.state != search.Ready {
		c.results.Clear()
		c.results.Message(render.ClassLoading, StillLoadingText)
		return
	}

	c.results.Results(c.engine.Search(query))
}
