// Package fuzzy is an in-memory approximate-matching engine over a
// search.Index. Scoring follows the Fuse model: per-key scores in [0,1]
// (0 is a perfect match) combined with field-length normalisation.
package fuzzy

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/noelzubin/site_search/search"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultThreshold          = 0.3
	DefaultDistance           = 100
	DefaultLocation           = 0
	DefaultMinMatchCharLength = 2

	epsilon = 2.220446049250313e-16
)

// Keys searched in every document, weighted equally.
var Keys = []string{"title", "content", "tags", "categories"}

// Engine answers queries over an index captured at build time.
type Engine struct {
	threshold      float64
	distance       int
	location       int
	ignoreLocation bool
	minLength      int
	logger         *zap.Logger

	index   search.Index
	records []record
	weight  float64
}

// record is a document pre-split into lowercase searchable values.
type record struct {
	keys [][]value // parallel to Keys
}

type value struct {
	text []rune
	norm float64
}

// Option configures an Engine.
type Option func(*Engine)

func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

func WithDistance(d int) Option {
	return func(e *Engine) { e.distance = d }
}

func WithLocation(l int) Option {
	return func(e *Engine) { e.location = l }
}

// WithIgnoreLocation scores matches by errors only, wherever they occur.
func WithIgnoreLocation() Option {
	return func(e *Engine) { e.ignoreLocation = true }
}

func WithMinMatchCharLength(n int) Option {
	return func(e *Engine) { e.minLength = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an engine over index. The index is not copied; callers must
// not mutate it afterwards.
func New(index search.Index, opts ...Option) *Engine {
	e := &Engine{
		threshold: DefaultThreshold,
		distance:  DefaultDistance,
		location:  DefaultLocation,
		minLength: DefaultMinMatchCharLength,
		logger:    zap.NewNop(),
		index:     index,
		weight:    1 / float64(len(Keys)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.records = lo.Map(index, func(doc search.Document, _ int) record {
		return record{keys: [][]value{
			values(doc.Title),
			values(doc.Content),
			values(doc.Tags...),
			values(doc.Categories...),
		}}
	})
	return e
}

func values(texts ...string) []value {
	out := make([]value, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		out = append(out, value{text: []rune(strings.ToLower(t)), norm: fieldNorm(t)})
	}
	return out
}

// fieldNorm weakens matches in long fields: 1/sqrt(tokens), 3 decimals.
func fieldNorm(s string) float64 {
	tokens := len(strings.Fields(s))
	if tokens == 0 {
		tokens = 1
	}
	return math.Round(1/math.Sqrt(float64(tokens))*1000) / 1000
}

// Search returns documents matching query, best first. Ties keep index
// order. It never panics; an internal failure yields no results.
func (e *Engine) Search(query string) (results []search.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("fuzzy search failed", zap.String("query", query), zap.Any("panic", r))
			results = []search.QueryResult{}
		}
	}()

	results = []search.QueryResult{}
	if utf8.RuneCountInString(query) < e.minLength {
		return results
	}

	pattern := []rune(strings.ToLower(query))
	for i, rec := range e.records {
		score, ok := e.scoreRecord(pattern, rec)
		if !ok {
			continue
		}
		results = append(results, search.QueryResult{Item: e.index[i], Score: score, RefIndex: i})
	}

	slices.SortStableFunc(results, func(a, b search.QueryResult) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	return results
}

// scoreRecord combines the best score of every matching key.
func (e *Engine) scoreRecord(pattern []rune, rec record) (float64, bool) {
	total := 1.0
	matched := false

	for _, vals := range rec.keys {
		best, norm, ok := e.bestValue(pattern, vals)
		if !ok {
			continue
		}
		matched = true
		if best == 0 {
			best = epsilon
		}
		total *= math.Pow(best, e.weight*norm)
	}
	return total, matched
}

func (e *Engine) bestValue(pattern []rune, vals []value) (score, norm float64, ok bool) {
	score = math.Inf(1)
	for _, v := range vals {
		s, found := e.match(pattern, v.text)
		if found && s < score {
			score, norm, ok = s, v.norm, true
		}
	}
	return score, norm, ok
}
