// Package metrics keeps wall-clock timers of the report pipeline stages.
package metrics

import (
	"sync"
	"time"
)

type Timers struct {
	mu     sync.Mutex
	Timers map[string]*Timer `json:"timers,omitempty" yaml:"timers,omitempty"`
	last   string
}

func NewTimers() *Timers {
	return &Timers{Timers: make(map[string]*Timer)}
}

// toggle starts a timer, or stops it when it is already running.
func (ts *Timers) toggle(k string) {
	t, ok := ts.Timers[k]
	if !ok {
		ts.Timers[k] = &Timer{start: time.Now()}
		return
	}
	t.Total = time.Since(t.start).Seconds()
}

// Add starts the timer k, or stops it on the second call.
func (ts *Timers) Add(k string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.toggle(k)
}

// Lap stops the previous lap and starts k.
func (ts *Timers) Lap(k string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.last != "" && ts.last != k {
		ts.toggle(ts.last)
	}
	ts.toggle(k)
	ts.last = k
}

// Seconds returns the recorded duration of k, zero while it is running.
func (ts *Timers) Seconds(k string) float64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.Timers[k]; ok {
		return t.Total
	}
	return 0
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds" yaml:"seconds"`
}
