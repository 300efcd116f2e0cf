package markdown

import (
	"bytes"
	"log"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// GFM renders full GitHub-flavored markdown with syntax-highlighted code
// blocks. Raw HTML in the input is dropped by goldmark's safe default.
type GFM struct {
	md goldmark.Markdown
}

// NewGFM creates a goldmark-backed renderer.
func NewGFM() *GFM {
	return &GFM{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render converts text to HTML. If goldmark fails the escaped text is
// returned as a single paragraph.
func (g *GFM) Render(text string) string {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		log.Printf("markdown: goldmark convert: %v", err)
		return "<p>" + EscapeHTML(text) + "</p>"
	}
	return buf.String()
}
