package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress for one operation. Values are on a scale of
// 0 to the total passed to Start.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a progress bar on stderr, or a line reporter when
// CI or GITHUB_ACTIONS is set.
func NewReporter(description string) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineReporter{Out: os.Stderr, Description: description, Step: 25}
	}
	return &TerminalReporter{Out: os.Stderr, Description: description}
}

// TerminalReporter draws a percentage bar that is cleared when done, so
// the chat log is not interleaved with stale bars.
type TerminalReporter struct {
	Out         io.Writer
	Description string
	bar         *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.Out),
		progressbar.OptionSetDescription(r.Description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	if message != "" {
		r.bar.Describe(r.Description + ": " + message)
	}
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter prints a line each time progress crosses a multiple of
// Step percent, for logs where a redrawn bar would be noise. A zero Step
// prints every update.
type LineReporter struct {
	Out         io.Writer
	Description string
	Step        int

	total int
	last  int
}

func (r *LineReporter) Start(total int) {
	r.total = total
	r.last = -1
	fmt.Fprintf(r.Out, "%s\n", r.Description)
}

func (r *LineReporter) Update(current int, message string) {
	pct := current
	if r.total > 0 {
		pct = current * 100 / r.total
	}
	if r.Step > 0 {
		bucket := pct / r.Step
		if bucket == r.last {
			return
		}
		r.last = bucket
	}
	if message != "" {
		fmt.Fprintf(r.Out, "%s: %d%% %s\n", r.Description, pct, message)
		return
	}
	fmt.Fprintf(r.Out, "%s: %d%%\n", r.Description, pct)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.Out, "%s: done\n", r.Description)
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(int)          {}
func (Nop) Update(int, string) {}
func (Nop) Finish()            {}
