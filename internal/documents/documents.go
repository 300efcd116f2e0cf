package documents

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docchat/internal/markdown"
)

// Record is the metadata kept for one uploaded file. Records live only
// for the session that created them.
type Record struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	SizeLabel  string    `json:"size"`
}

// List is the ordered set of documents uploaded during a session.
type List struct {
	mu      sync.RWMutex
	records []Record
}

// NewList returns an empty document list.
func NewList() *List {
	return &List{}
}

// Add appends a record for filename and returns it.
func (l *List) Add(filename string, uploadedAt time.Time, sizeLabel string) Record {
	rec := Record{
		ID:         "doc-" + uuid.NewString(),
		Filename:   filename,
		UploadedAt: uploadedAt,
		SizeLabel:  sizeLabel,
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec
}

// Put records filename like Add, but first drops any record with the same
// filename so a re-upload is listed once, at its new position.
func (l *List) Put(filename string, uploadedAt time.Time, sizeLabel string) Record {
	l.mu.Lock()
	kept := l.records[:0]
	for _, r := range l.records {
		if r.Filename != filename {
			kept = append(kept, r)
		}
	}
	l.records = kept
	l.mu.Unlock()

	return l.Add(filename, uploadedAt, sizeLabel)
}

// Remove deletes the record with the given id. It reports whether a
// record was removed.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the record with the given id.
func (l *List) Get(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// All returns a copy of the records in upload order.
func (l *List) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// SizeLabel formats a byte count as megabytes with two decimals.
func SizeLabel(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}

// RenderHTML renders the records as an HTML fragment for the document
// sidebar.
func RenderHTML(records []Record) string {
	if len(records) == 0 {
		return `<p class="no-documents">No documents loaded yet</p>`
	}

	var sb strings.Builder
	for _, r := range records {
		name := markdown.EscapeHTML(r.Filename)
		fmt.Fprintf(&sb, `<div class="document-item" data-id="%s">`, markdown.EscapeHTML(r.ID))
		fmt.Fprintf(&sb, `<span class="document-item-name" title="%s">%s</span>`, name, name)
		fmt.Fprintf(&sb, `<div class="document-item-meta">%s | %s</div>`,
			r.UploadedAt.Format("2006-01-02"), markdown.EscapeHTML(r.SizeLabel))
		sb.WriteString("</div>\n")
	}
	return sb.String()
}

// RenderText renders the records as a numbered terminal listing.
func RenderText(records []Record) string {
	if len(records) == 0 {
		return "No documents loaded yet\n"
	}

	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "  %d. %s\n     %s | %s | %s\n", i+1, r.Filename, r.UploadedAt.Format("2006-01-02"), r.SizeLabel, r.ID)
	}
	return sb.String()
}
