package search

import "errors"

var (
	// ErrIndexUnavailable is returned when the document index could not be
	// fetched or decoded.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// ErrWidgetUnavailable is returned when the delegated search widget
	// could not be loaded or constructed.
	ErrWidgetUnavailable = errors.New("search widget unavailable")
)

// Document is a single entry of the site's search index.
type Document struct {
	URI        string   `json:"uri"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// Index is the flat, ordered collection of searchable documents.
type Index []Document

// QueryResult is one ranked hit. Lower scores are better matches.
type QueryResult struct {
	Item     Document `json:"item"`
	Score    float64  `json:"score"`
	RefIndex int      `json:"refIndex"` // position of Item in the Index
}

// The engine that answers queries over a loaded index.
type Engine interface {
	Search(query string) []QueryResult // Ranked results, best match first.
}

// State is the lifecycle stage of the embedded search.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}
