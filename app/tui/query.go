package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/noelzubin/site_search/embedded"
	"github.com/noelzubin/site_search/render"
	"github.com/noelzubin/site_search/search"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Output formats of the query command.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

// jsonResult is one result of the json format.
type jsonResult struct {
	URI     string  `json:"uri"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// jsonOutput is the document printed by the json format. Field values
// are sanitized the same way as on screen.
type jsonOutput struct {
	Query   string       `json:"query"`
	State   string       `json:"state"`
	Message string       `json:"message,omitempty"`
	Results []jsonResult `json:"results"`
}

// recorder is a results surface that keeps what it was given.
type recorder struct {
	message string
	results []search.QueryResult
}

func (r *recorder) Clear() {
	r.message = ""
	r.results = nil
}

func (r *recorder) Message(_, text string) { r.message = render.TextContent(text) }

func (r *recorder) Results(results []search.QueryResult) {
	r.Clear()
	r.results = results
	if len(results) == 0 {
		r.message = render.NoResultsText
	}
}

// runQuery loads the index at indexURL, runs one query through the
// embedded controller and writes the results area in format. Index
// failures are written like any other outcome and then returned.
func runQuery(ctx context.Context, w io.Writer, loader embedded.IndexLoader, indexURL, baseURL, text, format string, logger *zap.Logger) error {
	page := render.NewPage(baseURL)
	rec := &recorder{}

	var surface render.Surface
	var container *render.Container
	switch format {
	case FormatHTML:
		surface = page.Surface()
	case FormatText:
		container = &render.Container{}
		surface = container
	case FormatJSON:
		surface = rec
	default:
		return fmt.Errorf("unknown format %q, want %s, %s or %s", format, FormatText, FormatHTML, FormatJSON)
	}

	ctrl := embedded.NewController(page, surface, embedded.WithLogger(logger))
	ctrl.Start()
	index, loadErr := loader.Load(ctx, indexURL)
	ctrl.Loaded(index, loadErr)

	if loadErr == nil {
		page.SetValue(text)
		ctrl.Input(text)
	}

	var err error
	switch format {
	case FormatHTML:
		err = render.Render(w, page.Root)
	case FormatText:
		_, err = fmt.Fprintln(w, container.View(0, 0))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(jsonOutput{
			Query:   text,
			State:   ctrl.State().String(),
			Message: rec.message,
			Results: lo.Map(rec.results, func(r search.QueryResult, _ int) jsonResult {
				return jsonResult{
					URI:     render.TextContent(r.Item.URI),
					Title:   render.TextContent(r.Item.Title),
					Snippet: render.TextContent(render.Snippet(r.Item.Content)),
					Score:   r.Score,
				}
			}),
		})
	}
	if err != nil {
		return err
	}
	return loadErr
}
