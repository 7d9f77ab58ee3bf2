// Package progress renders a completed/total counter while tasks run.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	DefaultDesc = "Tasks"
	DefaultUnit = "tasks"

	barWidth = 25
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	descStyle  = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
)

// Counter shows "desc count/total unit". On a terminal it redraws one line
// with a spinner and a bar; elsewhere it prints one plain line per update.
type Counter struct {
	desc     string
	unit     string
	writer   io.Writer
	tty      bool
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	current int
	count   int
	total   int
}

// Option configures a Counter.
type Option func(*Counter)

// WithUnit sets the unit label.
func WithUnit(unit string) Option {
	return func(c *Counter) { c.unit = unit }
}

// WithInterval sets the spinner frame interval.
func WithInterval(d time.Duration) Option {
	return func(c *Counter) { c.interval = d }
}

// WithTerminal overrides terminal detection.
func WithTerminal(tty bool) Option {
	return func(c *Counter) { c.tty = tty }
}

// NewCounter creates a counter writing to w.
func NewCounter(w io.Writer, desc string, opts ...Option) *Counter {
	if desc == "" {
		desc = DefaultDesc
	}
	c := &Counter{
		desc:     desc,
		unit:     DefaultUnit,
		writer:   w,
		tty:      isTerminal(w),
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Count returns the completed and total counts of the last Wait.
func (c *Counter) Count() (count, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, c.total
}

// Wait blocks until every handle is closed, advancing the count as each one
// closes.
func (c *Counter) Wait(handles []<-chan struct{}) {
	c.mu.Lock()
	c.count, c.total = 0, len(handles)
	c.mu.Unlock()

	c.render()
	if len(handles) == 0 {
		c.finish()
		return
	}

	completed := make(chan struct{}, len(handles))
	for _, h := range handles {
		go func(h <-chan struct{}) {
			<-h
			completed <- struct{}{}
		}(h)
	}

	var tick <-chan time.Time
	if c.tty {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for remaining := len(handles); remaining > 0; {
		select {
		case <-completed:
			remaining--
			c.mu.Lock()
			c.count++
			c.mu.Unlock()
			c.render()
		case <-tick:
			c.mu.Lock()
			c.current = (c.current + 1) % len(c.frames)
			c.mu.Unlock()
			c.render()
		}
	}

	c.finish()
}

func (c *Counter) render() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tty {
		fmt.Fprintf(c.writer, "%s: %d/%d %s\n", c.desc, c.count, c.total, c.unit)
		return
	}

	filled := barWidth
	if c.total > 0 {
		filled = c.count * barWidth / c.total
	}
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(c.writer, "\r\033[K%s %s %s %s %s",
		c.frames[c.current],
		descStyle.Render(c.desc),
		bar,
		countStyle.Render(fmt.Sprintf("%d/%d", c.count, c.total)),
		c.unit,
	)
}

func (c *Counter) finish() {
	if !c.tty {
		return
	}
	c.mu.Lock()
	fmt.Fprintln(c.writer)
	c.mu.Unlock()
}
