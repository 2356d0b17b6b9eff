package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/site_search/search"
	"github.com/samber/lo"
)

// Surface is a results area that search components write into.
type Surface interface {
	Clear()                               // Remove every child.
	Message(class, text string)           // Append a single message.
	Results(results []search.QueryResult) // Replace children with result cards.
}

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true)
	URIStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	SnippetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	MessageStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	CardStyle     = lipgloss.NewStyle().PaddingLeft(2).MarginBottom(1)
	SubStyle      = lipgloss.NewStyle().PaddingLeft(4).MarginBottom(1)
	SelectedStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("62")).
			MarginBottom(1)
)

// Block is one child of a Container: a result card or a message.
// Values are stored already passed through TextContent.
type Block struct {
	Class   string
	Title   string
	URI     string
	Snippet string
	Text    string
	Content string // full sanitized content, for previews
}

// Block classes.
const (
	ClassCard = "result-item"
	ClassSub  = "result-sub"
)

// IsCard reports whether the block is a result card.
func (b Block) IsCard() bool { return b.Class == ClassCard }

// Selectable reports whether the block links somewhere.
func (b Block) Selectable() bool { return b.Class == ClassCard || b.Class == ClassSub }

// Container is the terminal results area.
type Container struct {
	blocks []Block
	cursor int
}

func (c *Container) Clear() {
	c.blocks = nil
	c.cursor = 0
}

func (c *Container) Message(class, text string) {
	c.blocks = append(c.blocks, Block{Class: class, Text: TextContent(text)})
}

// Results renders results, replacing whatever the container held.
// An empty slice renders a single "no results" message.
func (c *Container) Results(results []search.QueryResult) {
	c.Clear()

	if len(results) == 0 {
		c.Message(ClassEmpty, NoResultsText)
		return
	}

	for _, r := range results {
		c.Card(r.Item)
	}
}

// Card appends a result card for doc.
func (c *Container) Card(doc search.Document) {
	c.blocks = append(c.blocks, Block{
		Class:   ClassCard,
		Title:   TextContent(doc.Title),
		URI:     TextContent(doc.URI),
		Snippet: TextContent(Snippet(doc.Content)),
		Content: TextContent(doc.Content),
	})
}

// Sub appends a sub-result (a section within the previous card's page).
func (c *Container) Sub(title, uri string) {
	c.blocks = append(c.blocks, Block{Class: ClassSub, Title: TextContent(title), URI: TextContent(uri)})
}

// Blocks returns a copy of the container's children.
func (c *Container) Blocks() []Block {
	return append([]Block(nil), c.blocks...)
}

// Selected returns the card under the cursor, if any.
func (c *Container) Selected() (Block, bool) {
	if c.cursor < 0 || c.cursor >= len(c.blocks) || !c.blocks[c.cursor].Selectable() {
		return Block{}, false
	}
	return c.blocks[c.cursor], true
}

func (c *Container) CursorDown() {
	if c.cursor < len(c.blocks)-1 {
		c.cursor++
	}
}

func (c *Container) CursorUp() {
	if c.cursor > 0 {
		c.cursor--
	}
}

// View draws the container at most height lines tall, keeping the
// selected card visible. A non-positive height means unbounded.
func (c *Container) View(width, height int) string {
	rendered := lo.Map(c.blocks, func(b Block, i int) string {
		return c.renderBlock(b, i == c.cursor, width)
	})

	if height <= 0 {
		return strings.Join(rendered, "\n")
	}

	// Drop leading blocks until the cursor's block fits.
	start := 0
	for start < c.cursor && lipgloss.Height(strings.Join(rendered[start:c.cursor+1], "\n")) > height {
		start++
	}
	lines := strings.Split(strings.Join(rendered[start:], "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (c *Container) renderBlock(b Block, selected bool, width int) string {
	if b.Class == ClassSub {
		style := SubStyle
		if selected {
			style = SelectedStyle
		}
		return style.Render("↳ " + TitleStyle.Render(b.Title) + " " + URIStyle.Render(b.URI))
	}

	if !b.IsCard() {
		style := MessageStyle
		if b.Class == ClassError {
			style = ErrorStyle
		}
		return CardStyle.Render(style.Render(b.Text))
	}

	style := CardStyle
	if selected {
		style = SelectedStyle
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(b.Title),
		URIStyle.Render(b.URI),
		SnippetStyle.Render(b.Snippet),
	))
}
