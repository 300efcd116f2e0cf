package qa

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ziadkadry99/docchat/internal/vectordb"
)

// NotFoundAnswer is returned when retrieval finds nothing.
const NotFoundAnswer = "Not found in the document."

const (
	maxExcerptChars   = 1000
	defaultAnswerRows = 3
	defaultSummaryRow = 5
)

var (
	casualPhrases    = []string{"hi", "hello", "hey", "thanks", "thank you", "bye", "goodbye"}
	summaryKeywords  = []string{"summarize", "summary", "brief", "overview"}
	numericLineCount = regexp.MustCompile(`(\d+)\s*(?:line|lien|paragraph)`)
	spelledCounts    = []struct {
		word string
		n    int
	}{
		{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
		{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
		{"eleven", 11}, {"twelve", 12}, {"fifteen", 15}, {"twenty", 20},
	}
)

// excerptAnswer answers without a language model: greetings get a canned
// reply, summary requests get the first lines of the best chunks, and
// anything else gets the top lines of the best chunk.
func excerptAnswer(question string, results []vectordb.SearchResult) string {
	if isCasual(question) {
		return casualReply(question)
	}
	if len(results) == 0 {
		return NotFoundAnswer
	}

	var content string
	if isSummaryRequest(question) {
		rows := requestedLines(question)
		var lines []string
		for i, r := range results {
			if i == 10 {
				break
			}
			lines = append(lines, nonEmptyLines(r.Document.Content)...)
		}
		if len(lines) == 0 {
			return NotFoundAnswer
		}
		if len(lines) > rows {
			lines = lines[:rows]
		}
		content = strings.Join(lines, "\n")
	} else {
		content = strings.TrimSpace(results[0].Document.Content)
		if content == "" {
			return NotFoundAnswer
		}
		if lines := strings.Split(content, "\n"); len(lines) > defaultAnswerRows {
			content = strings.Join(lines[:defaultAnswerRows], "\n")
		}
	}

	return truncateExcerpt(content)
}

// truncateExcerpt caps content, cutting at a late sentence end when there
// is one.
func truncateExcerpt(content string) string {
	r := []rune(content)
	if len(r) <= maxExcerptChars {
		return content
	}
	cut := string(r[:maxExcerptChars])
	if i := strings.LastIndex(cut, "."); i > 800 {
		return cut[:i+1]
	}
	return cut + "..."
}

func isCasual(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	for _, p := range casualPhrases {
		if q == p || q == p+"!" {
			return true
		}
	}
	return strings.Contains(q, "how are you") && len(q) < 30
}

func casualReply(q string) string {
	q = strings.ToLower(q)
	if strings.Contains(q, "thank") {
		return "You're welcome! Is there anything else you'd like to know about your document?"
	}
	if strings.Contains(q, "bye") {
		return "Goodbye! Come back any time you have more questions about your document."
	}
	return "I'm doing well, thank you for asking! I'm here to help you find information in your document. Feel free to ask me anything about it."
}

func isSummaryRequest(q string) bool {
	q = strings.ToLower(q)
	for _, k := range summaryKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// requestedLines reads "5 lines" or "five lines" out of a summary request.
func requestedLines(q string) int {
	q = strings.ToLower(q)
	if m := numericLineCount.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	for _, c := range spelledCounts {
		for _, unit := range []string{"line", "lien", "paragraph"} {
			if strings.Contains(q, c.word+" "+unit) || strings.Contains(q, c.word+unit) {
				return c.n
			}
		}
	}
	return defaultSummaryRow
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
