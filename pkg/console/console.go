// Package console provides the status log shown to the user: an ordered list
// of log lines with a verbose/terse display preference.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultBanner is shown at the top of a fresh or cleared log
const DefaultBanner = "Tokens and error messages are logged here.\n" +
	"Detailed notifications may be turned off with 'verbose off'."

// Console collects log entries. It is safe for concurrent use.
type Console struct {
	mu      sync.Mutex
	lines   []string
	verbose bool
	banner  string
	// mirror receives each entry as it is added; may be nil
	mirror io.Writer
}

// Option configures a Console
type Option func(*Console)

// WithMirror writes every entry to w as well
func WithMirror(w io.Writer) Option {
	return func(c *Console) {
		c.mirror = w
	}
}

// WithVerbose sets the initial verbosity
func WithVerbose(verbose bool) Option {
	return func(c *Console) {
		c.verbose = verbose
	}
}

// WithBanner replaces the default banner; an empty banner disables it
func WithBanner(banner string) Option {
	return func(c *Console) {
		c.banner = banner
	}
}

// New creates a console starting with the banner
func New(opts ...Option) *Console {
	c := &Console{
		verbose: true,
		banner:  DefaultBanner,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lines = c.bannerLines()
	return c
}

// AddLogEntry appends a line to the log
func (c *Console) AddLogEntry(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, message)
	if c.mirror != nil {
		fmt.Fprintln(c.mirror, message)
	}
}

// Verbose reports whether detailed notifications are shown
func (c *Console) Verbose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbose
}

// SetVerbose sets the display preference
func (c *Console) SetVerbose(verbose bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbose = verbose
}

// ToggleVerbose flips the display preference and returns the new value
func (c *Console) ToggleVerbose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbose = !c.verbose
	return c.verbose
}

// Clear resets the log to the banner
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = c.bannerLines()
}

// Lines returns a copy of the log
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Since returns the entries added after the first n lines
func (c *Console) Since(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= len(c.lines) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, len(c.lines)-n)
	copy(out, c.lines[n:])
	return out
}

// Len returns the number of lines in the log
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// String renders the log as text
func (c *Console) String() string {
	return strings.Join(c.Lines(), "\n")
}

func (c *Console) bannerLines() []string {
	if c.banner == "" {
		return nil
	}
	return strings.Split(c.banner, "\n")
}
