package progress

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	simulatedTotal = 100
	simulatedCap   = 90
	maxIncrement   = 40
)

// Simulation advances a Reporter on a timer while an operation whose real
// progress is unknown is in flight. It never passes 90% on its own.
type Simulation struct {
	r       Reporter
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	current float64
}

// Simulate starts a simulation that adds a random increment in [0, 40)
// every interval. rnd returns values in [0, 1); nil uses math/rand.
func Simulate(r Reporter, interval time.Duration, rnd func() float64) *Simulation {
	if rnd == nil {
		rnd = rand.Float64
	}
	s := &Simulation{
		r:    r,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	r.Start(simulatedTotal)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				s.current += rnd() * maxIncrement
				if s.current > simulatedCap {
					s.current = simulatedCap
				}
				v := int(s.current)
				s.mu.Unlock()
				r.Update(v, "")
			}
		}
	}()
	return s
}

// Current returns the simulated percentage.
func (s *Simulation) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.current)
}

// Complete stops the timer and jumps to 100%.
func (s *Simulation) Complete() {
	s.halt(func() {
		s.mu.Lock()
		s.current = simulatedTotal
		s.mu.Unlock()
		s.r.Update(simulatedTotal, "")
		s.r.Finish()
	})
}

// Abort stops the timer and clears the indicator without completing it.
func (s *Simulation) Abort() {
	s.halt(s.r.Finish)
}

func (s *Simulation) halt(final func()) {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		final()
	})
}
