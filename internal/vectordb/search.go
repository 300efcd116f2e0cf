package vectordb

import "strings"

// ContextText joins result contents into the context block of a prompt.
// When the results come from more than one upload, each excerpt is
// labelled with its source so answers can tell the documents apart.
func ContextText(results []SearchResult) string {
	label := len(Sources(results)) > 1

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if label {
			parts = append(parts, "["+r.Document.Metadata.Source+"]\n"+r.Document.Content)
			continue
		}
		parts = append(parts, r.Document.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Sources returns the distinct sources of results in rank order.
func Sources(results []SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var out []string
	for _, r := range results {
		src := r.Document.Metadata.Source
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}
