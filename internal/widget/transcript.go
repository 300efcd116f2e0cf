package widget

import (
	"fmt"
	"html/template"
	"io"

	"github.com/ziadkadry99/docchat/internal/documents"
)

const transcriptTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<aside class="sidebar">
<h2>Documents</h2>
{{.Documents}}
</aside>
<main id="chat">
{{range .Messages}}<div class="msg {{.Class}}"><div class="msg-bubble{{if .Error}} msg-error{{end}}">{{if .Sender}}<strong class="msg-sender">{{.Sender}}</strong>{{end}}{{.Body}}</div></div>
{{end}}</main>
</body>
</html>
`

var transcriptTmpl = template.Must(template.New("transcript").Parse(transcriptTemplate))

type transcriptMessage struct {
	Class  string
	Sender string
	Body   template.HTML
	Error  bool
}

type transcriptData struct {
	Title     string
	Documents template.HTML
	Messages  []transcriptMessage
}

// WriteTranscript writes the session's chat log and document list as a
// standalone HTML page. Typing indicators are skipped.
func (s *Session) WriteTranscript(w io.Writer, title string) error {
	data := transcriptData{
		Title:     title,
		Documents: template.HTML(documents.RenderHTML(s.docs.All())),
	}

	for _, m := range s.Messages() {
		if m.Variant == VariantTyping {
			continue
		}
		tm := transcriptMessage{
			Class: string(m.Variant),
			Body:  template.HTML(m.HTML),
			Error: m.Variant == VariantError,
		}
		if m.Variant != VariantUser {
			tm.Sender = m.Sender
			tm.Class = string(VariantBot)
		}
		data.Messages = append(data.Messages, tm)
	}

	if err := transcriptTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}
	return nil
}
