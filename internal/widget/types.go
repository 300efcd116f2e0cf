package widget

import (
	"context"
	"io"

	"github.com/ziadkadry99/docchat/internal/client"
)

// Variant tells how a message is presented.
type Variant string

const (
	VariantUser   Variant = "user"
	VariantBot    Variant = "bot"
	VariantError  Variant = "error"
	VariantTyping Variant = "typing"
)

// Sender labels used on messages.
const (
	SenderUser   = "You"
	SenderBot    = "AI"
	SenderSystem = "System"
	SenderError  = "Error"
)

// Message is one entry in the chat log. It is rendered once when created
// and never changed afterwards.
type Message struct {
	ID      string  `json:"id"`
	Sender  string  `json:"sender"`
	Text    string  `json:"text"`
	HTML    string  `json:"html"`
	Variant Variant `json:"variant"`
}

// ToastKind is the severity of a transient notification.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification.
type Toast struct {
	Message string
	Kind    ToastKind
}

// Notifier displays toasts.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// View is told about every change to the chat log so it can redraw.
type View interface {
	MessageAdded(Message)
	MessageRemoved(id string)
	Cleared()
}

type nopView struct{}

func (nopView) MessageAdded(Message) {}
func (nopView) MessageRemoved(string) {}
func (nopView) Cleared() {}

// Uploader sends a file to the backend.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*client.UploadResult, error)
}

// Backend is everything a Session needs from the server.
type Backend interface {
	Uploader
	client.Chatter
}
