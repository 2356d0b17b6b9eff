// Package render turns ranked results into terminal blocks or HTML nodes.
//
// Field values from the index are untrusted. They only ever reach output
// through TextContent (terminal) or HTML text nodes, never as escape
// sequences or markup.
package render

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/acarl005/stripansi"
)

// SnippetLength is the number of content runes shown per result.
const SnippetLength = 150

// Messages shown in the results area.
const (
	NoResultsText = "No results found."

	ClassLoading = "search-loading"
	ClassError   = "search-error"
	ClassEmpty   = "search-empty"
)

var spaces = regexp.MustCompile(`\s{2,}`)

// TextContent makes s inert for terminal output: escape sequences are
// removed, whitespace controls become spaces and other control or
// bidi-override characters are dropped.
func TextContent(s string) string {
	s = stripansi.Strip(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == '\v' || r == '\f':
			return ' '
		case unicode.IsControl(r), isBidiControl(r):
			return -1
		}
		return r
	}, s)
	return spaces.ReplaceAllString(s, " ")
}

func isBidiControl(r rune) bool {
	return (r >= '\u202a' && r <= '\u202e') || (r >= '\u2066' && r <= '\u2069')
}

// Snippet is the first SnippetLength runes of content followed by an
// ellipsis.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) > SnippetLength {
		runes = runes[:SnippetLength]
	}
	return string(runes) + "..."
}
