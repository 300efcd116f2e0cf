package walker

import (
	"path/filepath"
	"strings"
)

// Kind is the broad format of a document.
type Kind string

const (
	KindPDF   Kind = "PDF"
	KindWord  Kind = "Word"
	KindText  Kind = "Text"
	KindOther Kind = "Other"
)

var extensionToKind = map[string]Kind{
	".pdf":      KindPDF,
	".docx":     KindWord,
	".doc":      KindWord,
	".txt":      KindText,
	".text":     KindText,
	".md":       KindText,
	".markdown": KindText,
	".rst":      KindText,
	".csv":      KindText,
	".json":     KindText,
	".html":     KindText,
	".htm":      KindText,
	".log":      KindText,
}

// DetectKind returns the document kind for the given filename or path.
// Unknown extensions map to KindOther.
func DetectKind(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := extensionToKind[ext]; ok {
		return k
	}
	return KindOther
}
