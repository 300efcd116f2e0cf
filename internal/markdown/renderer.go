package markdown

import "fmt"

// Mode selects a Renderer implementation.
type Mode string

const (
	ModeSimple Mode = "simple"
	ModeGFM    Mode = "gfm"
)

// Renderer converts a bot reply into an HTML fragment.
type Renderer interface {
	Render(text string) string
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(string) string

func (f RendererFunc) Render(text string) string { return f(text) }

// NewRenderer returns the renderer for the given mode. An empty mode
// selects the simple renderer.
func NewRenderer(mode Mode) (Renderer, error) {
	switch mode {
	case "", ModeSimple:
		return RendererFunc(Render), nil
	case ModeGFM:
		return NewGFM(), nil
	default:
		return nil, fmt.Errorf("unknown render mode %q: must be simple or gfm", mode)
	}
}
