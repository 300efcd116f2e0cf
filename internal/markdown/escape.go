package markdown

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-special characters so s can be
// interpolated into markup as text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
