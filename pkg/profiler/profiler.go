package profiler

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"
)

// Profiler collects durations per named pipeline stage.
type Profiler struct {
	mu     sync.RWMutex
	times  map[string][]time.Duration
	stages []string // first-seen order
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		times: make(map[string][]time.Duration),
	}
}

// Timer measures one run of a stage.
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing a stage.
func (p *Profiler) Start(name string) *Timer {
	return &Timer{
		profiler: p,
		name:     name,
		start:    time.Now(),
	}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.profiler.Record(t.name, d)
	return d
}

// Record adds a duration for the named stage.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.times[name]; !ok {
		p.stages = append(p.stages, name)
	}
	p.times[name] = append(p.times[name], d)
}

// Measure runs fn as the named stage. The duration is recorded even when fn
// fails.
func (p *Profiler) Measure(name string, fn func() error) error {
	timer := p.Start(name)
	err := fn()
	timer.Stop()
	return err
}

// Stats summarizes the durations of one stage.
type Stats struct {
	Name    string
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
	P95     time.Duration
}

// Stats returns the summary for a stage. Unknown stages have Count 0.
func (p *Profiler) Stats(name string) Stats {
	p.mu.RLock()
	times := p.times[name]
	sorted := make([]time.Duration, len(times))
	copy(sorted, times)
	p.mu.RUnlock()

	if len(sorted) == 0 {
		return Stats{Name: name}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return Stats{
		Name:    name,
		Count:   len(sorted),
		Total:   total,
		Average: total / time.Duration(len(sorted)),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Median:  percentile(sorted, 0.50),
		P95:     percentile(sorted, 0.95),
	}
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, q float64) time.Duration {
	rank := int(math.Ceil(q * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// AllStats returns stats for every stage in the order stages were first seen.
func (p *Profiler) AllStats() []Stats {
	p.mu.RLock()
	stages := make([]string, len(p.stages))
	copy(stages, p.stages)
	p.mu.RUnlock()

	out := make([]Stats, 0, len(stages))
	for _, name := range stages {
		out = append(out, p.Stats(name))
	}
	return out
}

// Reset discards all recorded durations.
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.times = make(map[string][]time.Duration)
	p.stages = nil
	p.mu.Unlock()
}

// WriteReport prints a table of stage timings.
func (p *Profiler) WriteReport(w io.Writer) {
	stats := p.AllStats()
	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "%-16s %8s %10s %10s %10s %10s %10s\n",
		"Stage", "Count", "Total", "Avg", "Min", "Max", "P95")
	for _, s := range stats {
		fmt.Fprintf(w, "%-16s %8d %10s %10s %10s %10s %10s\n",
			truncate(s.Name, 16),
			s.Count,
			formatDuration(s.Total),
			formatDuration(s.Average),
			formatDuration(s.Min),
			formatDuration(s.Max),
			formatDuration(s.P95),
		)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
