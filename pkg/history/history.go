// Package history records parse runs so earlier results can be listed,
// inspected and compared.
//
// The only backend is SQLite; runs are keyed by ULIDs so that listing by
// key is listing by time.
package history

import (
	"context"
	"time"
)

// Store is the run history interface.
//
// All operations accept context.Context for timeout/cancellation support.
type Store interface {
	// Record stores run and returns its assigned ID
	Record(ctx context.Context, run *Run) (string, error)

	// List returns runs newest first
	List(ctx context.Context, opts *ListOptions) ([]*Run, error)

	// Get returns a single run
	Get(ctx context.Context, id string) (*Run, error)

	// Compare diffs the source text of two runs
	Compare(ctx context.Context, id1, id2 string) (*DiffResult, error)

	Close() error
}

// Run is one parse of one input
type Run struct {
	ID         string    // ULID, assigned by Record
	SessionID  string    // Session that produced the run (UUID)
	Name       string    // Base name of the parsed file
	Source     string    // Input text as read
	Outline    string    // Text outline of the tree; empty on failure
	Success    bool      // Whether the parse produced a window
	Diagnostic string    // First logged diagnostic line, if any
	TokenCount int       // Number of lexed tokens
	CreatedAt  time.Time // Set by Record when zero
}

// ListOptions filters List
type ListOptions struct {
	Limit      int    // Max entries (0 = unlimited)
	Name       string // Only runs of this file name
	FailedOnly bool   // Only runs that did not parse
}

// DiffResult is a line diff of two texts
type DiffResult struct {
	DiffText   string // Lines prefixed with "- ", "+ " or "  "
	HasChanges bool
}
