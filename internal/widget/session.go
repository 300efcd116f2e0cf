package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/markdown"
	"github.com/ziadkadry99/docchat/internal/progress"
)

// Validation errors returned before any network call is made.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds character limit")
	ErrFileTooLarge   = errors.New("file exceeds size limit")
)

// Options configures a Session. Zero fields take the defaults.
type Options struct {
	MaxMessageChars  int
	MaxUploadBytes   int64
	Retry            client.Retry
	Renderer         markdown.Renderer
	Notifier         Notifier
	View             View
	Progress         func(filename string) progress.Reporter
	ProgressInterval time.Duration
	Now              func() time.Time
}

const (
	defaultMaxMessageChars = 500
	defaultMaxUploadBytes  = 50 * 1024 * 1024
	nearLimitRatio         = 0.8
)

// Session is the state of one chat window: the uploaded documents, the
// message log and the collaborators used to talk to the backend.
// Overlapping sends and uploads are allowed; their log updates are
// applied in the order they resolve.
type Session struct {
	backend Backend
	opts    Options
	docs    *documents.List

	mu       sync.Mutex
	messages []Message
}

// NewSession creates a session that talks to backend.
func NewSession(backend Backend, opts Options) *Session {
	if opts.MaxMessageChars <= 0 {
		opts.MaxMessageChars = defaultMaxMessageChars
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = client.DefaultRetry()
	}
	if opts.Renderer == nil {
		opts.Renderer = markdown.RendererFunc(markdown.Render)
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Toast) {})
	}
	if opts.View == nil {
		opts.View = nopView{}
	}
	if opts.Progress == nil {
		opts.Progress = func(string) progress.Reporter { return progress.Nop{} }
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 200 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		backend: backend,
		opts:    opts,
		docs:    documents.NewList(),
	}
}

// Documents returns the session's document list.
func (s *Session) Documents() *documents.List { return s.docs }

// Messages returns a copy of the chat log, typing indicators included.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send validates input and, if it is acceptable, posts it to the chat
// endpoint with retries. The reply or the final failure is appended to
// the log. Validation failures are reported by toast and returned.
func (s *Session) Send(ctx context.Context, input string) error {
	msg := strings.TrimSpace(input)
	if msg == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(msg) > s.opts.MaxMessageChars {
		s.notify(fmt.Sprintf("Message exceeds %d character limit", s.opts.MaxMessageChars), ToastError)
		return ErrMessageTooLong
	}

	s.addUserMessage(msg)
	typingID := s.ShowTyping()

	reply, err := s.opts.Retry.Send(ctx, s.backend, msg)
	s.RemoveTyping(typingID)

	if err != nil {
		log.Printf("widget: chat failed after retries: %v", err)
		s.addMessage(SenderError, err.Error(), VariantError)
		s.notify("Failed to get response: "+err.Error(), ToastError)
		return err
	}

	s.addMessage(SenderBot, reply, VariantBot)
	return nil
}

// Upload sends a file of the given size to the backend. Files larger than
// the limit are rejected without a network call.
func (s *Session) Upload(ctx context.Context, filename string, size int64, content io.Reader) error {
	if size > s.opts.MaxUploadBytes {
		s.notify(fmt.Sprintf("File size exceeds %dMB limit", s.opts.MaxUploadBytes/(1024*1024)), ToastError)
		return ErrFileTooLarge
	}

	sim := progress.Simulate(s.opts.Progress(filename), s.opts.ProgressInterval, nil)

	res, err := s.backend.Upload(ctx, filename, content)
	if err != nil {
		sim.Abort()
		log.Printf("widget: upload %s: %v", filename, err)
		s.addMessage(SenderError, err.Error(), VariantError)
		s.notify("Upload failed: "+err.Error(), ToastError)
		return err
	}
	sim.Complete()

	s.docs.Add(res.Filename, s.opts.Now(), documents.SizeLabel(size))
	s.addMessage(SenderSystem, "✓ "+res.Filename+" uploaded successfully.", VariantBot)
	if res.InitialReply != "" {
		s.addMessage(SenderBot, res.InitialReply, VariantBot)
	}
	s.notify("File uploaded successfully!", ToastSuccess)
	return nil
}

// RemoveDocument drops a document from the list.
func (s *Session) RemoveDocument(id string) bool {
	if !s.docs.Remove(id) {
		return false
	}
	s.notify("Document removed", ToastInfo)
	return true
}

// Clear empties the chat log. With no documents loaded there is nothing
// to clear and the log is left as is.
func (s *Session) Clear() bool {
	if s.docs.Len() == 0 {
		s.notify("No documents loaded", ToastInfo)
		return false
	}

	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()

	s.opts.View.Cleared()
	s.notify("Chat cleared", ToastSuccess)
	return true
}

// ShowTyping appends a typing indicator and returns its id.
func (s *Session) ShowTyping() string {
	m := Message{ID: "typing-" + uuid.NewString(), Variant: VariantTyping}
	s.append(m)
	return m.ID
}

// RemoveTyping removes the typing indicator with the given id, if present.
func (s *Session) RemoveTyping(id string) {
	s.mu.Lock()
	removed := false
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.opts.View.MessageRemoved(id)
	}
}

// CharCount describes the length of a draft message.
type CharCount struct {
	Count     int
	Max       int
	NearLimit bool
	CanSend   bool
}

// Count reports the length of a draft message against the limit.
func (s *Session) Count(draft string) CharCount {
	n := utf8.RuneCountInString(draft)
	return CharCount{
		Count:     n,
		Max:       s.opts.MaxMessageChars,
		NearLimit: float64(n) > float64(s.opts.MaxMessageChars)*nearLimitRatio,
		CanSend:   strings.TrimSpace(draft) != "",
	}
}

func (s *Session) addUserMessage(text string) {
	s.append(Message{
		ID:      "msg-" + uuid.NewString(),
		Sender:  SenderUser,
		Text:    text,
		HTML:    markdown.EscapeHTML(text),
		Variant: VariantUser,
	})
}

func (s *Session) addMessage(sender, text string, variant Variant) {
	s.append(Message{
		ID:      "msg-" + uuid.NewString(),
		Sender:  sender,
		Text:    text,
		HTML:    s.opts.Renderer.Render(text),
		Variant: variant,
	})
}

func (s *Session) append(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	s.opts.View.MessageAdded(m)
}

func (s *Session) notify(msg string, kind ToastKind) {
	s.opts.Notifier.Notify(Toast{Message: msg, Kind: kind})
}
