package fuzzy

import (
	"strings"
	"testing"

	"github.com/noelzubin/site_search/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(uri, title, content string, tags ...string) search.Document {
	return search.Document{URI: uri, Title: title, Content: content, Tags: tags, Categories: []string{}}
}

func TestSearch_SingleDocument(t *testing.T) {
	index := search.Index{
		{Title: "A", Content: "hello world", Tags: []string{}, Categories: []string{}, URI: "/a"},
	}

	results := New(index).Search("hello")

	require.Len(t, results, 1)
	assert.Equal(t, "/a", results[0].Item.URI)
	assert.Equal(t, 0, results[0].RefIndex)
	assert.GreaterOrEqual(t, results[0].Score, 0.0)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestSearch_ShortQueryReturnsNothing(t *testing.T) {
	index := search.Index{doc("/a", "a", "a b c")}

	assert.Empty(t, New(index).Search(""))
	assert.Empty(t, New(index).Search("a"))
}

func TestSearch_ToleratesTypos(t *testing.T) {
	index := search.Index{doc("/go", "Concurrency", "goroutines and channels")}

	results := New(index).Search("concurency")

	require.Len(t, results, 1)
	assert.Equal(t, "/go", results[0].Item.URI)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	index := search.Index{doc("/k", "Kubernetes Operators", "")}

	assert.Len(t, New(index).Search("KUBERNETES"), 1)
}

func TestSearch_RejectsDistantMatches(t *testing.T) {
	index := search.Index{doc("/a", "alpha", "beta")}

	assert.Empty(t, New(index).Search("zulu"))
}

func TestSearch_MatchesTagsAndCategories(t *testing.T) {
	index := search.Index{
		doc("/a", "first", "nothing here", "golang"),
		{URI: "/b", Title: "second", Content: "", Categories: []string{"databases"}},
	}

	engine := New(index)

	tagged := engine.Search("golang")
	require.Len(t, tagged, 1)
	assert.Equal(t, "/a", tagged[0].Item.URI)

	categorised := engine.Search("databases")
	require.Len(t, categorised, 1)
	assert.Equal(t, "/b", categorised[0].Item.URI)
}

func TestSearch_OrderedByScore(t *testing.T) {
	// Given: one exact title match and one typo match
	index := search.Index{
		doc("/typo", "bleeve", ""),
		doc("/exact", "bleve", ""),
	}

	// When: searching
	results := New(index).Search("bleve")

	// Then: the exact match ranks first and scores ascend
	require.Len(t, results, 2)
	assert.Equal(t, "/exact", results[0].Item.URI)
	assert.Equal(t, "/typo", results[1].Item.URI)
	assert.Less(t, results[0].Score, results[1].Score)
}

func TestSearch_TiesKeepIndexOrder(t *testing.T) {
	index := search.Index{
		doc("/1", "release notes", ""),
		doc("/2", "other", ""),
		doc("/3", "release notes", ""),
		doc("/4", "release notes", ""),
	}

	results := New(index).Search("release")

	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{results[0].RefIndex, results[1].RefIndex, results[2].RefIndex})
	assert.Equal(t, results[0].Score, results[2].Score)
}

func TestSearch_ResultsComeFromIndex(t *testing.T) {
	index := search.Index{
		doc("/a", "search engines", "fuzzy matching of text"),
		doc("/b", "terminal", "bubbletea programs"),
		doc("/c", "searching", "binary search trees"),
	}
	engine := New(index)

	for _, q := range []string{"search", "te", "bubble", "trees", "xyzzy"} {
		results := engine.Search(q)
		for i, r := range results {
			assert.Equal(t, index[r.RefIndex], r.Item, q)
			if i > 0 {
				assert.LessOrEqual(t, results[i-1].Score, r.Score, q)
			}
		}
	}
}

func TestSearch_LocationPenalty(t *testing.T) {
	// Given: a term far from the start of a long field
	content := strings.Repeat("filler ", 20) + "needle"
	index := search.Index{doc("/far", "title", content)}

	// Then: default scoring rejects it, ignoring location finds it
	assert.Empty(t, New(index).Search("needle"))

	results := New(index, WithIgnoreLocation()).Search("needle")
	require.Len(t, results, 1)
	assert.Equal(t, "/far", results[0].Item.URI)
}

func TestSearch_StricterThreshold(t *testing.T) {
	index := search.Index{doc("/a", "concurrency", "")}

	assert.Len(t, New(index).Search("concurency"), 1)
	assert.Empty(t, New(index, WithThreshold(0)).Search("concurency"))
}

func TestSearch_RecoversFromInternalFailure(t *testing.T) {
	engine := New(search.Index{doc("/a", "hello", "")})
	engine.index = nil

	results := engine.Search("hello")

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMatch_Scores(t *testing.T) {
	e := New(nil)

	score, ok := e.match([]rune("hello"), []rune("hello world"))
	require.True(t, ok)
	assert.Equal(t, 0.0, score)

	score, ok = e.match([]rune("world"), []rune("hello world"))
	require.True(t, ok)
	assert.InDelta(t, 0.06, score, 1e-9)

	score, ok = e.match([]rune("helo"), []rune("hello"))
	require.True(t, ok)
	assert.InDelta(t, 0.25, score, 1e-9)

	_, ok = e.match([]rune("abc"), []rune(""))
	assert.False(t, ok)
}

func TestFieldNorm(t *testing.T) {
	assert.Equal(t, 1.0, fieldNorm("one"))
	assert.Equal(t, 0.5, fieldNorm("one two three four"))
	assert.Equal(t, 1.0, fieldNorm(""))
}
