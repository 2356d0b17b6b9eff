package bleve_indexer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/samber/lo"

	_ "github.com/blevesearch/bleve/v2/config"
	bleveSearch "github.com/blevesearch/bleve/v2/search"
)

// Page is a searchable page of the widget bundle.
type Page struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Anchors []Anchor `json:"-"`
}

// Anchor is a heading within a page that can be linked to directly.
type Anchor struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Hit is a page matching a query, highest score first.
type Hit struct {
	Page  Page
	Score float64
	Terms []string // matched terms, for picking sub-results
}

// bleveIndexer is an in-memory bleve index over the bundle's pages.
type bleveIndexer struct {
	index    bleve.Index
	analyzer analysis.Analyzer // the content field's, applied to queries
	pages    map[string]Page
}

// NewBleveIndexer returns an empty in-memory index.
func NewBleveIndexer() (*bleveIndexer, error) {
	m := newMapping()
	analyzer := m.AnalyzerNamed(m.AnalyzerNameForPath("content"))
	if analyzer == nil {
		return nil, fmt.Errorf("failed to create index: no analyzer for content")
	}

	index, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &bleveIndexer{index: index, analyzer: analyzer, pages: make(map[string]Page)}, nil
}

// newMapping indexes title and content; the URL is stored but not analysed.
func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Store = false

	keyword := bleve.NewKeywordFieldMapping()
	keyword.Index = false

	page := bleve.NewDocumentMapping()
	page.AddFieldMappingsAt("title", text)
	page.AddFieldMappingsAt("content", text)
	page.AddFieldMappingsAt("url", keyword)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = page
	return m
}

// IndexPages adds pages in one batch, keyed by URL.
func (s *bleveIndexer) IndexPages(pages []Page) error {
	batch := s.index.NewBatch()
	for _, p := range pages {
		if err := batch.Index(p.URL, p); err != nil {
			return fmt.Errorf("failed to index page %s: %w", p.URL, err)
		}
		s.pages[p.URL] = p
	}
	return s.index.Batch(batch)
}

// Len is the number of indexed pages.
func (s *bleveIndexer) Len() int { return len(s.pages) }

// Search searches the index for the given query.
//
// The query is analysed like the content, so stopwords are dropped.
// Every remaining term must match title or content, exactly, within a
// small edit distance, or (for the last word while it is being typed)
// as a prefix.
func (s *bleveIndexer) Search(ctx context.Context, qry string, size int) ([]Hit, error) {
	words := strings.Fields(qry)
	typing := !strings.HasSuffix(qry, " ")

	var conjuncts []query.Query
	for i, word := range words {
		terms := s.analyze(word)
		for j, term := range terms {
			prefix := typing && i == len(words)-1 && j == len(terms)-1
			conjuncts = append(conjuncts, termQuery(term, prefix))
		}
	}
	if len(conjuncts) == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), size, 0, false)
	req.IncludeLocations = true

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return lo.FilterMap(res.Hits, func(hit *bleveSearch.DocumentMatch, _ int) (Hit, bool) {
		page, ok := s.pages[hit.ID]
		return Hit{Page: page, Score: hit.Score, Terms: matchedTerms(hit)}, ok
	}), nil
}

func (s *bleveIndexer) analyze(text string) []string {
	return lo.Map(s.analyzer.Analyze([]byte(text)), func(t *analysis.Token, _ int) string {
		return string(t.Term)
	})
}

func termQuery(term string, prefix bool) query.Query {
	var disjuncts []query.Query
	for _, field := range []string{"title", "content"} {
		match := bleve.NewMatchQuery(term)
		match.SetField(field)
		if utf8.RuneCountInString(term) > 3 {
			match.SetFuzziness(1)
		}
		if field == "title" {
			match.SetBoost(2)
		}
		disjuncts = append(disjuncts, match)

		if prefix {
			p := bleve.NewPrefixQuery(term)
			p.SetField(field)
			disjuncts = append(disjuncts, p)
		}
	}
	return bleve.NewDisjunctionQuery(disjuncts...)
}

func matchedTerms(hit *bleveSearch.DocumentMatch) []string {
	var terms []string
	for _, byTerm := range hit.Locations {
		for term := range byTerm {
			terms = append(terms, term)
		}
	}
	return lo.Uniq(terms)
}

func (s *bleveIndexer) Close() error {
	return s.index.Close()
}
