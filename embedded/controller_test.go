package embedded

import (
	"errors"
	"fmt"
	"testing"

	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"github.com/noelzubin/site_search/search/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInput struct {
	disabled    bool
	placeholder string
	focused     int
}

func (f *fakeInput) SetDisabled(disabled bool) { f.disabled = disabled }
func (f *fakeInput) SetPlaceholder(text string) { f.placeholder = text }
func (f *fakeInput) Focus() { f.focused++ }

// countingEngine records every query it receives.
type countingEngine struct {
	inner   search.Engine
	queries []string
}

func (e *countingEngine) Search(q string) []search.QueryResult {
	e.queries = append(e.queries, q)
	return e.inner.Search(q)
}

var sampleIndex = search.Index{
	{Title: "A", Content: "hello world", Tags: []string{}, Categories: []string{}, URI: "/a"},
}

func newTestController() (*Controller, *fakeInput, *render.Container, *countingEngine) {
	input := &fakeInput{}
	results := &render.Container{}
	engine := &countingEngine{}
	ctrl := NewController(input, results, WithBuilder(func(index search.Index) search.Engine {
		engine.inner = fuzzy.New(index)
		return engine
	}))
	return ctrl, input, results, engine
}

func TestController_Start(t *testing.T) {
	ctrl, input, results, _ := newTestController()
	assert.Equal(t, search.Uninitialized, ctrl.State())

	// When: starting
	require.True(t, ctrl.Start())

	// Then: loading affordances are shown
	assert.Equal(t, search.Loading, ctrl.State())
	assert.True(t, input.disabled)
	assert.Equal(t, PlaceholderLoading, input.placeholder)
	blocks := results.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, render.ClassLoading, blocks[0].Class)
	assert.Equal(t, LoadingText, blocks[0].Text)

	// And: a second start is refused
	assert.False(t, ctrl.Start())
}

func TestController_LoadSuccess(t *testing.T) {
	ctrl, input, results, _ := newTestController()
	ctrl.Start()

	ctrl.Loaded(sampleIndex, nil)

	assert.Equal(t, search.Ready, ctrl.State())
	assert.False(t, input.disabled)
	assert.Equal(t, PlaceholderReady, input.placeholder)
	assert.Equal(t, 1, input.focused)
	assert.Empty(t, results.Blocks())
	assert.Equal(t, sampleIndex, ctrl.Index())
}

func TestController_QueryMatches(t *testing.T) {
	ctrl, _, results, _ := newTestController()
	ctrl.Start()
	ctrl.Loaded(sampleIndex, nil)

	ctrl.Input("hello")

	blocks := results.Blocks()
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].IsCard())
	assert.Equal(t, "/a", blocks[0].URI)
}

func TestController_LoadFailureShowsUnavailable(t *testing.T) {
	ctrl, input, results, _ := newTestController()
	ctrl.Start()

	ctrl.Loaded(nil, fmt.Errorf("%w: HTTP 500", search.ErrIndexUnavailable))

	assert.Equal(t, search.Error, ctrl.State())
	assert.True(t, input.disabled)
	assert.Equal(t, PlaceholderUnavailable, input.placeholder)
	blocks := results.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, render.ClassError, blocks[0].Class)
	assert.Equal(t, UnavailableText, blocks[0].Text)
}

func TestController_ShortQueryClears(t *testing.T) {
	ctrl, _, results, engine := newTestController()
	ctrl.Start()
	ctrl.Loaded(sampleIndex, nil)
	ctrl.Input("hello")
	require.NotEmpty(t, results.Blocks())

	ctrl.Input("h")

	assert.Empty(t, results.Blocks())
	assert.Equal(t, []string{"hello"}, engine.queries)
}

func TestController_QueryWhileLoadingShowsMessage(t *testing.T) {
	ctrl, _, results, engine := newTestController()
	ctrl.Start()

	ctrl.Input("hello")

	blocks := results.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, StillLoadingText, blocks[0].Text)
	assert.Empty(t, engine.queries)

	// And: the query is not replayed once ready
	ctrl.Loaded(sampleIndex, nil)
	assert.Empty(t, engine.queries)
	assert.Empty(t, results.Blocks())
}

func TestController_ShortQueryInEveryState(t *testing.T) {
	ctrl, _, results, engine := newTestController()

	ctrl.Input("x")
	assert.Empty(t, results.Blocks())

	ctrl.Start()
	ctrl.Input("x")
	assert.Empty(t, results.Blocks())

	ctrl.Loaded(sampleIndex, nil)
	ctrl.Input("")
	assert.Empty(t, results.Blocks())

	assert.Empty(t, engine.queries)
}

func TestController_ShortQueryClearsInError(t *testing.T) {
	ctrl, _, results, engine := newTestController()
	ctrl.Start()
	ctrl.Loaded(nil, fmt.Errorf("%w: HTTP 500", search.ErrIndexUnavailable))
	require.Len(t, results.Blocks(), 1)

	ctrl.Input("h")

	assert.Equal(t, search.Error, ctrl.State())
	assert.Empty(t, results.Blocks())
	assert.Empty(t, engine.queries)
}

func TestController_ErrorIsTerminal(t *testing.T) {
	ctrl, input, results, engine := newTestController()
	ctrl.Start()
	ctrl.Loaded(nil, errors.New("boom"))

	// When: a late success arrives and a query is typed
	ctrl.Loaded(sampleIndex, nil)
	ctrl.Input("hello")

	// Then: nothing leaves the error state
	assert.Equal(t, search.Error, ctrl.State())
	assert.True(t, input.disabled)
	assert.Nil(t, ctrl.Index())
	assert.Nil(t, engine.inner)
	assert.Empty(t, engine.queries)
	assert.Len(t, results.Blocks(), 1)
	assert.Equal(t, UnavailableText, results.Blocks()[0].Text)
}

func TestController_LoadedBeforeStartIgnored(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	ctrl.Loaded(sampleIndex, nil)

	assert.Equal(t, search.Uninitialized, ctrl.State())
}

func TestController_NoResults(t *testing.T) {
	ctrl, _, results, _ := newTestController()
	ctrl.Start()
	ctrl.Loaded(sampleIndex, nil)

	ctrl.Input("zzzzzz")

	blocks := results.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, render.NoResultsText, blocks[0].Text)
}

func TestController_HTMLPage(t *testing.T) {
	// Given: the controller driving an HTML page
	page := render.NewPage("/")
	ctrl := NewController(page, page.Surface())
	ctrl.Start()
	ctrl.Loaded(search.Index{{Title: "<b>bold</b>", Content: "hello there", URI: "/b"}}, nil)

	// When: querying
	ctrl.Input("hello")

	// Then: one safe card is rendered
	out, err := render.InnerHTML(page.Results)
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="/b">&lt;b&gt;bold&lt;/b&gt;</a>`)
}
