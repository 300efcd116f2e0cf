package qa

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters for uploaded documents.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// separators are tried in order; the first one present in the text is
// used, and pieces still too long are split again with the next ones.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk splits text into pieces of at most size characters, preferring
// paragraph, then line, then sentence, then word boundaries. Consecutive
// chunks share up to overlap characters of context.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return splitRecursive(text, separators, size, overlap)
}

func splitRecursive(text string, seps []string, size, overlap int) []string {
	sep := ""
	var rest []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		splits = strings.Split(text, sep)
	}

	var (
		out  []string
		good []string
	)
	for _, s := range splits {
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) < size {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			out = append(out, merge(good, sep, size, overlap)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, strings.TrimSpace(s))
		} else {
			out = append(out, splitRecursive(s, rest, size, overlap)...)
		}
	}
	if len(good) > 0 {
		out = append(out, merge(good, sep, size, overlap)...)
	}
	return out
}

// merge joins small splits back together into chunks no longer than size,
// carrying the tail of each chunk into the next while it fits in overlap.
func merge(splits []string, sep string, size, overlap int) []string {
	sepLen := utf8.RuneCountInString(sep)
	joinCost := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	var (
		docs  []string
		cur   []string
		total int
	)
	emit := func() {
		if doc := strings.TrimSpace(strings.Join(cur, sep)); doc != "" {
			docs = append(docs, doc)
		}
	}

	for _, s := range splits {
		n := utf8.RuneCountInString(s)
		if len(cur) > 0 && total+n+joinCost(len(cur)) > size {
			emit()
			for total > 0 && (total > overlap || total+n+joinCost(len(cur)) > size) {
				total -= utf8.RuneCountInString(cur[0]) + joinCost(len(cur)-1)
				cur = cur[1:]
			}
		}
		total += n + joinCost(len(cur))
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		emit()
	}
	return docs
}
