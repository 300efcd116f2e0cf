package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ziadkadry99/docchat/internal/widget"
)

// terminal prints chat messages and toasts as plain lines.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

func (t *terminal) MessageAdded(m widget.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch m.Variant {
	case widget.VariantTyping:
		fmt.Fprintln(t.out, "AI is typing...")
	case widget.VariantUser:
		// Already visible at the prompt.
	default:
		fmt.Fprintf(t.out, "%s: %s\n\n", m.Sender, strings.TrimSpace(m.Text))
	}
}

func (t *terminal) MessageRemoved(string) {}

func (t *terminal) Cleared() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "--- chat cleared ---")
}

func (t *terminal) Notify(toast widget.Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "[%s] %s\n", toast.Kind, toast.Message)
}
