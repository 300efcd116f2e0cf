package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// blockKind identifies the kind of a rendered block.
type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeader
	blockOrdered
	blockUnordered
)

// block is one unit of output: a header, a paragraph or a list. For
// lists, lines holds one entry per item.
type block struct {
	kind  blockKind
	level int
	lines []string
}

var (
	orderedItem   = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	unorderedItem = regexp.MustCompile(`^[*+-] (.*)$`)

	boldSpan    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	starItalic  = regexp.MustCompile(`\*(.+?)\*`)
	underItalic = regexp.MustCompile(`_(.+?)_`)
	codeSpan    = regexp.MustCompile("`(.+?)`")
)

// headerPrefixes is checked longest first so "### x" is not read as "# ".
var headerPrefixes = []struct {
	prefix string
	tag    int
}{
	{"### ", 4},
	{"## ", 3},
	{"# ", 2},
}

// Render converts the constrained markdown dialect used in bot replies
// into HTML. The input is escaped before any markup is produced. Nested
// lists and links are not supported.
func Render(text string) string {
	blocks := scan(EscapeHTML(normalizeNewlines(text)))
	if len(blocks) == 0 {
		return ""
	}

	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.html())
	}
	return strings.Join(out, "\n")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// scan splits escaped text into blocks. A blank line ends a paragraph,
// but a run of list items of one kind survives blank lines between them.
func scan(text string) []block {
	var (
		blocks []block
		cur    *block
	)

	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if cur != nil && cur.kind == blockParagraph {
				flush()
			}
			continue
		}

		if level, body, ok := parseHeader(line); ok {
			flush()
			blocks = append(blocks, block{kind: blockHeader, level: level, lines: []string{body}})
			continue
		}

		if kind, item, ok := parseListItem(line); ok {
			if cur == nil || cur.kind != kind {
				flush()
				cur = &block{kind: kind}
			}
			cur.lines = append(cur.lines, item)
			continue
		}

		if cur == nil || cur.kind != blockParagraph {
			flush()
			cur = &block{kind: blockParagraph}
		}
		cur.lines = append(cur.lines, line)
	}
	flush()

	return blocks
}

func parseHeader(line string) (level int, body string, ok bool) {
	for _, h := range headerPrefixes {
		if strings.HasPrefix(line, h.prefix) {
			return h.tag, line[len(h.prefix):], true
		}
	}
	return 0, "", false
}

func parseListItem(line string) (blockKind, string, bool) {
	if m := orderedItem.FindStringSubmatch(line); m != nil {
		return blockOrdered, m[1], true
	}
	if m := unorderedItem.FindStringSubmatch(line); m != nil {
		return blockUnordered, m[1], true
	}
	return 0, "", false
}

func (b block) html() string {
	var sb strings.Builder
	switch b.kind {
	case blockHeader:
		tag := "h" + strconv.Itoa(b.level)
		sb.WriteString("<" + tag + ">")
		sb.WriteString(inline(b.lines[0]))
		sb.WriteString("</" + tag + ">")
	case blockOrdered, blockUnordered:
		tag := "ul"
		if b.kind == blockOrdered {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">")
		for _, item := range b.lines {
			sb.WriteString("<li>")
			sb.WriteString(inline(item))
			sb.WriteString("</li>")
		}
		sb.WriteString("</" + tag + ">")
	default:
		sb.WriteString("<p>")
		sb.WriteString(inline(strings.Join(b.lines, "\n")))
		sb.WriteString("</p>")
	}
	return sb.String()
}

// inline applies span-level markup in a fixed order: bold, italic, code.
func inline(s string) string {
	s = boldSpan.ReplaceAllString(s, "<strong>$1</strong>")
	s = starItalic.ReplaceAllString(s, "<em>$1</em>")
	s = underItalic.ReplaceAllString(s, "<em>$1</em>")
	s = codeSpan.ReplaceAllString(s, "<code>$1</code>")
	return s
}
