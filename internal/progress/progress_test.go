package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder captures every reported value.
type recorder struct {
	mu       sync.Mutex
	started  int
	values   []int
	finished int
}

func (r *recorder) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = total
}

func (r *recorder) Update(current int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, current)
}

func (r *recorder) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func TestSimulateCapsAtNinety(t *testing.T) {
	rec := &recorder{}
	// Always the maximum increment, so the cap is reached quickly.
	sim := Simulate(rec, time.Millisecond, func() float64 { return 0.999 })

	deadline := time.Now().Add(2 * time.Second)
	for sim.Current() < 90 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)

	for _, v := range rec.snapshot() {
		if v > 90 {
			t.Fatalf("simulated progress exceeded cap: %d", v)
		}
	}
	if sim.Current() != 90 {
		t.Errorf("expected progress to reach 90, got %d", sim.Current())
	}

	sim.Complete()
	values := rec.snapshot()
	if values[len(values)-1] != 100 {
		t.Errorf("Complete should report 100, last value %d", values[len(values)-1])
	}
	if rec.started != 100 || rec.finished != 1 {
		t.Errorf("started=%d finished=%d", rec.started, rec.finished)
	}
}

func TestSimulateAbortDoesNotComplete(t *testing.T) {
	rec := &recorder{}
	sim := Simulate(rec, time.Hour, nil)
	sim.Abort()
	sim.Abort()
	sim.Complete()

	if len(rec.snapshot()) != 0 {
		t.Errorf("expected no updates, got %v", rec.snapshot())
	}
	if rec.finished != 1 {
		t.Errorf("Finish called %d times, want 1", rec.finished)
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Out: &buf, Description: "Uploading a.txt"}
	r.Start(100)
	r.Update(50, "half")
	r.Finish()

	out := buf.String()
	if !strings.Contains(out, "Uploading a.txt: 50% half") {
		t.Errorf("missing update line: %q", out)
	}
	if !strings.Contains(out, "Uploading a.txt: done") {
		t.Errorf("missing finish line: %q", out)
	}
}

func TestLineReporterStep(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Out: &buf, Description: "Uploading", Step: 25}
	r.Start(100)
	for _, v := range []int{5, 10, 30, 35, 60, 90, 100} {
		r.Update(v, "")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"Uploading", "Uploading: 5%", "Uploading: 30%", "Uploading: 60%", "Uploading: 90%", "Uploading: 100%"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestTerminalReporterWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{Out: &buf, Description: "Uploading"}
	r.Update(10, "ignored before Start")
	r.Start(100)
	r.Update(40, "")
	r.Finish()
	if buf.Len() == 0 {
		t.Error("expected the bar to be drawn to Out")
	}
}
