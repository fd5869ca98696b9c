package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// BatchProgress reports progress of a multi-request generate run and
// tallies generated and fallback results.
type BatchProgress struct {
	mu        sync.Mutex
	total     int
	generated int
	fallback  int
	started   time.Time
	writer    io.Writer
}

// NewBatchProgress creates a reporter writing to w (os.Stderr when nil).
func NewBatchProgress(w io.Writer) *BatchProgress {
	if w == nil {
		w = os.Stderr
	}
	return &BatchProgress{writer: w}
}

// Start resets the reporter for total requests.
func (p *BatchProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.generated = 0
	p.fallback = 0
	p.started = time.Now()
	p.render()
}

// Done records one finished request.
func (p *BatchProgress) Done(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ok {
		p.generated++
	} else {
		p.fallback++
	}
	p.render()
}

// Finish prints the final tally.
func (p *BatchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
	fmt.Fprintf(p.writer, "%d generated, %d fell back in %s\n",
		p.generated, p.fallback, time.Since(p.started).Round(time.Millisecond))
}

// Counts returns the generated and fallback tallies.
func (p *BatchProgress) Counts() (generated, fallback int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generated, p.fallback
}

func (p *BatchProgress) render() {
	if p.total == 0 {
		return
	}

	done := p.generated + p.fallback
	percent := float64(done) / float64(p.total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(p.writer, "\r[%s] %3.0f%% (%d/%d) %d fell back",
		bar, percent, done, p.total, p.fallback)
}
